package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"pawmatch-backend/internal/models"
	"pawmatch-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// EventHandler receives photo-insert trigger events from the storage layer.
// Delivery is at-least-once; the validation state machine is idempotent on
// already-terminal photos, so duplicates are harmless.
type EventHandler struct {
	validation *services.ValidationService
	secret     string
}

// NewEventHandler creates a new trigger event handler
func NewEventHandler(validation *services.ValidationService, secret string) *EventHandler {
	return &EventHandler{
		validation: validation,
		secret:     secret,
	}
}

// PhotoCreated handles POST /internal/events/photo-created
func (h *EventHandler) PhotoCreated(w http.ResponseWriter, r *http.Request) {
	if subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Event-Secret")), []byte(h.secret)) != 1 {
		respondError(w, "Invalid event secret", http.StatusUnauthorized)
		return
	}

	var event models.PhotoCreatedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, "Invalid event payload", http.StatusBadRequest)
		return
	}

	if event.ID == "" || event.UserID == "" || event.StoragePath == "" || event.BucketType == "" {
		respondError(w, "Missing required event fields", http.StatusBadRequest)
		return
	}
	// target_type may be absent; it defaults to bucket_type via Target().
	if event.TargetType == "" {
		event.TargetType = event.Target()
	}

	log.Info().
		Str("photo_id", event.ID).
		Str("user_id", event.UserID).
		Str("target_type", string(event.TargetType)).
		Msg("Photo created event received")

	h.validation.DispatchAsync(event)

	w.WriteHeader(http.StatusAccepted)
}
