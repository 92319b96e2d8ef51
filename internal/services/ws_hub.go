package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pawmatch-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Hub manages WebSocket connections and pushes pipeline events to the
// owning user: per-photo validation results and profile decisions.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a new WebSocket connection for a user
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Close existing connection if any
	if existing, exists := h.connections[userID]; exists {
		existing.Close()
	}

	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[userID]; exists {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user is online
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// NotifyPhotoValidated pushes a photo's terminal validation result to its
// owner, if connected.
func (h *Hub) NotifyPhotoValidated(photo *models.Photo) {
	data := map[string]interface{}{
		"photo_id": photo.ID,
		"status":   photo.Status,
	}
	message := WSMessage{Type: "photo_validated", Data: data}
	if photo.RejectionReason != nil {
		data["rejection_reason"] = *photo.RejectionReason
		message.Message = RejectionMessage(*photo.RejectionReason)
	}

	if err := h.SendToUser(photo.UserID, message); err != nil {
		log.Debug().
			Str("user_id", photo.UserID).
			Str("photo_id", photo.ID).
			Msg("User offline, photo_validated event dropped")
	}
}

// NotifyProfileDecision pushes the committed profile decision to its owner,
// if connected. Implements ProfileNotifier.
func (h *Hub) NotifyProfileDecision(ctx context.Context, result *EligibilityResult) {
	message := WSMessage{
		Type: "profile_decision",
		Data: map[string]interface{}{
			"lifecycle_status":  result.LifecycleStatus,
			"validation_status": result.ValidationStatus,
		},
	}

	if err := h.SendToUser(result.UserID, message); err != nil {
		log.Debug().
			Str("user_id", result.UserID).
			Msg("User offline, profile_decision event dropped")
	}
}

// RejectionMessage maps a stored rejection reason to the short actionable
// string shown to users. Presentation only, not part of the pipeline
// contract.
func RejectionMessage(reason models.RejectionReason) string {
	switch reason {
	case models.ReasonNSFWOrDisallowed:
		return "Photo not allowed"
	case models.ReasonIsScreenshot:
		return "Screenshots not allowed"
	case models.ReasonContainsContact:
		return "Info not allowed"
	case models.ReasonMissingHuman:
		return "No person found"
	case models.ReasonMissingDog:
		return "No dog found"
	case models.ReasonDogInsteadOfHuman:
		return "We found a dog, but this photo should show you"
	case models.ReasonHumanInsteadOfDog:
		return "We found a person, but this photo should show your dog"
	case models.ReasonFailedToGenerateURL:
		return "Upload failed, please try again"
	default:
		return "Photo could not be validated"
	}
}
