package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pawmatch-backend/internal/middleware"
	"pawmatch-backend/internal/models"
	"pawmatch-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// DogHandler handles dog-group HTTP requests
type DogHandler struct {
	dogs *repository.DogGroupRepository
}

// NewDogHandler creates a new dog group handler
func NewDogHandler(dogs *repository.DogGroupRepository) *DogHandler {
	return &DogHandler{dogs: dogs}
}

// CreateDog handles POST /api/v1/dogs. Declares the next free dog slot for
// the user.
func (h *DogHandler) CreateDog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	slot, err := h.dogs.NextSlot(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute dog slot")
		respondError(w, "Failed to declare dog", http.StatusInternalServerError)
		return
	}

	group := &models.DogGroup{
		UserID:    userID,
		Slot:      slot,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := h.dogs.Create(ctx, group); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create dog group")
		respondError(w, "Failed to declare dog", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, group)
}

// GetDogs handles GET /api/v1/dogs
func (h *DogHandler) GetDogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	groups, err := h.dogs.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list dog groups")
		respondError(w, "Failed to list dogs", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"dogs": groups})
}
