package handlers

import (
	"net/http"

	"pawmatch-backend/internal/middleware"
	"pawmatch-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	eligibility *services.EligibilityService
	profiles    services.ProfileStore
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(eligibility *services.EligibilityService, profiles services.ProfileStore) *ProfileHandler {
	return &ProfileHandler{
		eligibility: eligibility,
		profiles:    profiles,
	}
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profiles.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondError(w, "Profile not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// FinalizeProfile handles POST /api/v1/profile/finalize. Called when the
// user signals they are done submitting photos for this validation pass.
func (h *ProfileHandler) FinalizeProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	result, err := h.eligibility.Finalize(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Profile finalize failed")
		respondError(w, "Failed to finalize profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
