package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawmatch-backend/internal/classifier"
	"pawmatch-backend/internal/models"
	"pawmatch-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// decision is the outcome of the per-photo decision table.
type decision struct {
	status        models.PhotoStatus
	reason        *models.RejectionReason
	containsHuman bool
	containsDog   bool
}

func reject(reason models.RejectionReason) decision {
	return decision{status: models.PhotoStatusRejected, reason: &reason}
}

// ValidationService is the per-photo validation state machine. Photos move
// pending -> approved or pending -> rejected exactly once; re-invocation on
// an already-terminal photo is a no-op.
type ValidationService struct {
	photos     PhotoStore
	store      ObjectStore
	classifier classifier.Classifier
	hub        *Hub
}

// NewValidationService creates a new per-photo validation service.
func NewValidationService(photos PhotoStore, store ObjectStore, cls classifier.Classifier, hub *Hub) *ValidationService {
	return &ValidationService{
		photos:     photos,
		store:      store,
		classifier: cls,
		hub:        hub,
	}
}

// DispatchAsync runs ProcessEvent in the background. Per-photo validation is
// fanned out independently per photo with no ordering between photos.
func (s *ValidationService) DispatchAsync(event models.PhotoCreatedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if _, err := s.ProcessEvent(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("photo_id", event.ID).
				Str("user_id", event.UserID).
				Msg("Photo validation failed, photo left pending for sweeper retry")
		}
	}()
}

// ProcessEvent validates a single photo end-to-end: fetch the record, call
// the classifier, commit the terminal status. An analysis failure is returned
// as an error and leaves the photo pending; the sweeper retries it later.
func (s *ValidationService) ProcessEvent(ctx context.Context, event models.PhotoCreatedEvent) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo %s: %w", event.ID, err)
	}

	if photo.Status.Terminal() {
		log.Debug().
			Str("photo_id", photo.ID).
			Str("status", string(photo.Status)).
			Msg("Photo already validated, skipping")
		return photo, nil
	}

	dec, err := s.classify(ctx, photo)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, photo, dec)
}

// classify runs the two-stage classifier flow and the decision table.
func (s *ValidationService) classify(ctx context.Context, photo *models.Photo) (decision, error) {
	imageURL, err := s.store.PublicURL(photo.StoragePath)
	if err != nil {
		// Without an addressable URL the photo can never be classified.
		// Reject immediately instead of leaving it pending forever.
		log.Error().
			Err(err).
			Str("photo_id", photo.ID).
			Msg("Failed to resolve public URL for photo")
		return reject(models.ReasonFailedToGenerateURL), nil
	}

	// Fast-path moderation filter. A call failure is inconclusive, not a
	// pass: fall through to the analysis call, which screens for policy
	// violations as a fallback.
	moderation, err := s.classifier.Moderate(ctx, imageURL)
	if err != nil {
		log.Warn().
			Err(err).
			Str("photo_id", photo.ID).
			Msg("Moderation call inconclusive, falling through to analysis")
		moderation = nil
	}
	if moderation != nil && moderation.Flagged {
		return reject(models.ReasonNSFWOrDisallowed), nil
	}

	analysis, err := s.classifier.Analyze(ctx, imageURL)
	if err != nil {
		return decision{}, fmt.Errorf("entity analysis failed for photo %s: %w", photo.ID, err)
	}

	return decide(photo.TargetType, analysis), nil
}

// decide applies the rejection/approval policy in strict order, first match
// wins.
func decide(target models.TargetType, analysis *classifier.AnalysisResult) decision {
	switch {
	case analysis.Flagged:
		return reject(models.ReasonNSFWOrDisallowed)
	case analysis.IsScreenshot:
		return reject(models.ReasonIsScreenshot)
	case analysis.HasContactInfo:
		return reject(models.ReasonContainsContact)
	}

	switch target {
	case models.TargetHuman:
		switch {
		case analysis.HasHuman:
			return decision{
				status:        models.PhotoStatusApproved,
				containsHuman: true,
				containsDog:   analysis.HasDog,
			}
		case analysis.HasDog:
			// More specific than missing_human: the user submitted a photo
			// of their dog into the human bucket.
			return reject(models.ReasonDogInsteadOfHuman)
		default:
			return reject(models.ReasonMissingHuman)
		}
	case models.TargetDog:
		switch {
		case analysis.HasDog:
			return decision{
				status:        models.PhotoStatusApproved,
				containsDog:   true,
				containsHuman: analysis.HasHuman,
			}
		case analysis.HasHuman:
			return reject(models.ReasonHumanInsteadOfDog)
		default:
			return reject(models.ReasonMissingDog)
		}
	default:
		// Unreachable given intake validation, kept as a defensive fallback.
		return reject(models.ReasonUnknownTargetType)
	}
}

// commit persists the terminal transition and performs rejection cleanup.
func (s *ValidationService) commit(ctx context.Context, photo *models.Photo, dec decision) (*models.Photo, error) {
	err := s.photos.Finalize(ctx, photo.ID, dec.status, dec.containsDog, dec.containsHuman, dec.reason)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoAlreadyFinal) {
			// Lost a race with a concurrent invocation; the earlier terminal
			// status stands.
			log.Debug().Str("photo_id", photo.ID).Msg("Photo finalized concurrently, skipping")
			return s.photos.GetByID(ctx, photo.ID)
		}
		return nil, fmt.Errorf("failed to commit photo status: %w", err)
	}

	photo.Status = dec.status
	photo.ContainsDog = dec.containsDog
	photo.ContainsHuman = dec.containsHuman
	photo.RejectionReason = dec.reason

	if dec.status == models.PhotoStatusRejected {
		// Best-effort cleanup: a delete failure is logged, never retried,
		// and never blocks the status commit.
		if err := s.store.Delete(ctx, photo.StoragePath); err != nil {
			log.Error().
				Err(err).
				Str("photo_id", photo.ID).
				Str("storage_path", photo.StoragePath).
				Msg("Failed to delete storage object for rejected photo")
		}
	}

	logEvent := log.Info().
		Str("photo_id", photo.ID).
		Str("user_id", photo.UserID).
		Str("status", string(dec.status))
	if dec.reason != nil {
		logEvent = logEvent.Str("reason", string(*dec.reason))
	}
	logEvent.Msg("Photo validated")

	if s.hub != nil {
		s.hub.NotifyPhotoValidated(photo)
	}

	return photo, nil
}
