package services

import (
	"context"
	"fmt"

	"pawmatch-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// UserLookup resolves push tokens for notification delivery.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// APNsNotifier sends a push notification when a profile decision lands.
// Delivery is best-effort: failures are logged and never affect the commit.
type APNsNotifier struct {
	client *apns2.Client
	topic  string
	users  UserLookup
}

// NewAPNsNotifier creates a token-authenticated APNs notifier.
func NewAPNsNotifier(keyFile, keyID, teamID, topic string, production bool, users UserLookup) (*APNsNotifier, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsNotifier{
		client: client,
		topic:  topic,
		users:  users,
	}, nil
}

// NotifyProfileDecision implements ProfileNotifier.
func (n *APNsNotifier) NotifyProfileDecision(ctx context.Context, result *EligibilityResult) {
	user, err := n.users.GetByID(ctx, result.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", result.UserID).Msg("Failed to resolve user for push")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *user.PushToken,
		Topic:       n.topic,
		Payload: payload.NewPayload().
			Alert(decisionAlert(result.LifecycleStatus)).
			Custom("lifecycle_status", string(result.LifecycleStatus)).
			Custom("validation_status", string(result.ValidationStatus)),
	}

	resp, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("user_id", result.UserID).Msg("Failed to send profile decision push")
		return
	}
	if !resp.Sent() {
		log.Warn().
			Str("user_id", result.UserID).
			Str("apns_reason", resp.Reason).
			Msg("APNs rejected profile decision push")
	}
}

func decisionAlert(status models.LifecycleStatus) string {
	switch status {
	case models.LifecycleActive:
		return "Your profile is live!"
	case models.LifecycleLimited:
		return "Your profile is live, but some photos need attention"
	default:
		return "Your profile needs more photos before it can go live"
	}
}
