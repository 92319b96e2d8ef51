package services

import (
	"context"
	"fmt"

	"pawmatch-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// EligibilityResult is the structured outcome of one aggregation pass.
type EligibilityResult struct {
	UserID             string                  `json:"user_id"`
	RunID              int64                   `json:"validation_run_id"`
	Skipped            bool                    `json:"skipped"`
	ApprovedHumanCount int                     `json:"approved_human_count"`
	AllDogsCovered     bool                    `json:"all_dogs_covered"`
	HasAnyRejected     bool                    `json:"has_any_rejected"`
	MinimumMet         bool                    `json:"minimum_met"`
	LifecycleStatus    models.LifecycleStatus  `json:"lifecycle_status,omitempty"`
	ValidationStatus   models.ValidationStatus `json:"validation_status,omitempty"`
}

// ProfileNotifier receives committed profile decisions.
type ProfileNotifier interface {
	NotifyProfileDecision(ctx context.Context, result *EligibilityResult)
}

// EligibilityService aggregates a user's per-photo results into a
// profile-level decision. It runs only when the user explicitly finalizes a
// validation pass, and its commit is guarded by the run token so stale runs
// never overwrite fresher state.
type EligibilityService struct {
	profiles  ProfileStore
	photos    PhotoStore
	dogs      DogGroupStore
	notifiers []ProfileNotifier
}

// NewEligibilityService creates a new eligibility aggregator.
func NewEligibilityService(profiles ProfileStore, photos PhotoStore, dogs DogGroupStore, notifiers ...ProfileNotifier) *EligibilityService {
	return &EligibilityService{
		profiles:  profiles,
		photos:    photos,
		dogs:      dogs,
		notifiers: notifiers,
	}
}

// Finalize mints a fresh run token and evaluates the user's eligibility.
func (s *EligibilityService) Finalize(ctx context.Context, userID string) (*EligibilityResult, error) {
	runID, err := s.profiles.MintRunID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint run token: %w", err)
	}
	return s.Evaluate(ctx, userID, runID)
}

// Evaluate runs the aggregation for a given run token. Safe under concurrent
// invocations for the same user: the commit is a compare-and-swap on the run
// token, and the loser's writes are discarded, not merged.
func (s *EligibilityService) Evaluate(ctx context.Context, userID string, runID int64) (*EligibilityResult, error) {
	groups, err := s.dogs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dog groups: %w", err)
	}

	photos, err := s.photos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}

	result := computeEligibility(userID, runID, groups, photos)

	committed, err := s.profiles.CommitDecision(ctx, userID, runID, result.LifecycleStatus, result.ValidationStatus)
	if err != nil {
		return nil, err
	}
	if !committed {
		// A newer validation pass holds the token; its result is
		// authoritative and this one is discarded.
		log.Info().
			Str("user_id", userID).
			Int64("run_id", runID).
			Msg("Eligibility commit skipped: run superseded")
		result.Skipped = true
		result.LifecycleStatus = ""
		result.ValidationStatus = ""
		return result, nil
	}

	log.Info().
		Str("user_id", userID).
		Int64("run_id", runID).
		Int("approved_human_count", result.ApprovedHumanCount).
		Bool("all_dogs_covered", result.AllDogsCovered).
		Bool("has_any_rejected", result.HasAnyRejected).
		Str("lifecycle_status", string(result.LifecycleStatus)).
		Str("validation_status", string(result.ValidationStatus)).
		Msg("Profile eligibility committed")

	for _, n := range s.notifiers {
		n.NotifyProfileDecision(ctx, result)
	}

	return result, nil
}

// computeEligibility applies the aggregate eligibility rules to the full
// photo set.
func computeEligibility(userID string, runID int64, groups []*models.DogGroup, photos []*models.Photo) *EligibilityResult {
	result := &EligibilityResult{
		UserID: userID,
		RunID:  runID,
	}

	coveredSlots := make(map[int]bool)
	for _, photo := range photos {
		switch photo.Status {
		case models.PhotoStatusApproved:
			if photo.DogSlot == nil && photo.ContainsHuman {
				result.ApprovedHumanCount++
			}
			if photo.DogSlot != nil && photo.ContainsDog {
				coveredSlots[*photo.DogSlot] = true
			}
		case models.PhotoStatusRejected:
			result.HasAnyRejected = true
		}
	}

	// Zero dogs declared means the requirement is unmet, not vacuously met.
	result.AllDogsCovered = len(groups) > 0
	for _, group := range groups {
		if !coveredSlots[group.Slot] {
			result.AllDogsCovered = false
			break
		}
	}

	result.MinimumMet = result.ApprovedHumanCount >= 1 && result.AllDogsCovered

	switch {
	case result.MinimumMet && !result.HasAnyRejected:
		result.LifecycleStatus = models.LifecycleActive
		result.ValidationStatus = models.ValidationPassed
	case result.MinimumMet:
		result.LifecycleStatus = models.LifecycleLimited
		result.ValidationStatus = models.ValidationFailedPhotos
	default:
		result.LifecycleStatus = models.LifecyclePendingReview
		result.ValidationStatus = models.ValidationFailedRequirements
	}

	return result
}
