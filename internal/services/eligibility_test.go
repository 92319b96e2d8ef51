package services

import (
	"context"
	"testing"

	"pawmatch-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedHuman(id, userID string) *models.Photo {
	photo := pendingPhoto(id, userID, models.TargetHuman, nil)
	photo.Status = models.PhotoStatusApproved
	photo.ContainsHuman = true
	return photo
}

func approvedDog(id, userID string, slot int) *models.Photo {
	photo := pendingPhoto(id, userID, models.TargetDog, intPtr(slot))
	photo.Status = models.PhotoStatusApproved
	photo.ContainsDog = true
	return photo
}

func rejected(id, userID string, target models.TargetType) *models.Photo {
	photo := pendingPhoto(id, userID, target, nil)
	photo.Status = models.PhotoStatusRejected
	reason := models.ReasonMissingHuman
	photo.RejectionReason = &reason
	return photo
}

func dogGroups(userID string, slots ...int) []*models.DogGroup {
	var groups []*models.DogGroup
	for _, slot := range slots {
		groups = append(groups, &models.DogGroup{UserID: userID, Slot: slot})
	}
	return groups
}

func TestFinalize_AllRequirementsMet(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 0)
	photos := newFakePhotoStore(
		approvedHuman("p1", userID),
		approvedDog("p2", userID, 1),
	)
	dogs := &fakeDogStore{groups: dogGroups(userID, 1)}

	svc := NewEligibilityService(profiles, photos, dogs)
	result, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.ApprovedHumanCount)
	assert.True(t, result.AllDogsCovered)
	assert.False(t, result.HasAnyRejected)
	assert.True(t, result.MinimumMet)
	assert.Equal(t, models.LifecycleActive, result.LifecycleStatus)
	assert.Equal(t, models.ValidationPassed, result.ValidationStatus)
	assert.Equal(t, models.LifecycleActive, profiles.profile.LifecycleStatus)
}

func TestFinalize_RejectedPhotoLimitsProfile(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 0)
	photos := newFakePhotoStore(
		approvedHuman("p1", userID),
		approvedDog("p2", userID, 1),
		rejected("p3", userID, models.TargetHuman),
	)
	dogs := &fakeDogStore{groups: dogGroups(userID, 1)}

	svc := NewEligibilityService(profiles, photos, dogs)
	result, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, result.MinimumMet)
	assert.True(t, result.HasAnyRejected)
	assert.Equal(t, models.LifecycleLimited, result.LifecycleStatus)
	assert.Equal(t, models.ValidationFailedPhotos, result.ValidationStatus)
}

func TestFinalize_ZeroDogsDeclaredFailsRequirements(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 0)
	photos := newFakePhotoStore(approvedHuman("p1", userID))
	dogs := &fakeDogStore{}

	svc := NewEligibilityService(profiles, photos, dogs)
	result, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, result.AllDogsCovered, "zero dogs declared is not vacuously covered")
	assert.False(t, result.MinimumMet)
	assert.Equal(t, models.LifecyclePendingReview, result.LifecycleStatus)
	assert.Equal(t, models.ValidationFailedRequirements, result.ValidationStatus)
}

func TestFinalize_UncoveredDogSlotFailsRequirements(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 0)
	photos := newFakePhotoStore(
		approvedHuman("p1", userID),
		approvedDog("p2", userID, 1),
	)
	dogs := &fakeDogStore{groups: dogGroups(userID, 1, 2)}

	svc := NewEligibilityService(profiles, photos, dogs)
	result, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, result.AllDogsCovered)
	assert.Equal(t, models.LifecyclePendingReview, result.LifecycleStatus)
	assert.Equal(t, models.ValidationFailedRequirements, result.ValidationStatus)
}

func TestFinalize_ApprovedDogPhotoWithoutDogFlagDoesNotCover(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 0)
	dogPhoto := approvedDog("p2", userID, 1)
	dogPhoto.ContainsDog = false
	photos := newFakePhotoStore(approvedHuman("p1", userID), dogPhoto)
	dogs := &fakeDogStore{groups: dogGroups(userID, 1)}

	svc := NewEligibilityService(profiles, photos, dogs)
	result, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, result.AllDogsCovered)
}

func TestEvaluate_StaleRunTokenSkipsCommit(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 5)
	photos := newFakePhotoStore(
		approvedHuman("p1", userID),
		approvedDog("p2", userID, 1),
	)
	dogs := &fakeDogStore{groups: dogGroups(userID, 1)}

	svc := NewEligibilityService(profiles, photos, dogs)

	// Evaluate with a token older than the profile's stored token: a newer
	// run has superseded this one.
	result, err := svc.Evaluate(context.Background(), userID, 4)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Empty(t, result.LifecycleStatus)
	assert.Equal(t, 0, profiles.commits)
	assert.Equal(t, models.LifecyclePendingReview, profiles.profile.LifecycleStatus,
		"stale run must not alter profile state")
}

func TestEvaluate_SameTokenIsIdempotent(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 7)
	photos := newFakePhotoStore(
		approvedHuman("p1", userID),
		approvedDog("p2", userID, 1),
	)
	dogs := &fakeDogStore{groups: dogGroups(userID, 1)}

	svc := NewEligibilityService(profiles, photos, dogs)

	first, err := svc.Evaluate(context.Background(), userID, 7)
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), userID, 7)
	require.NoError(t, err)

	assert.False(t, first.Skipped)
	assert.False(t, second.Skipped, "unchanged token still matches, second commit succeeds")
	assert.Equal(t, first.LifecycleStatus, second.LifecycleStatus)
	assert.Equal(t, first.ValidationStatus, second.ValidationStatus)
	assert.Equal(t, 2, profiles.commits)
}

func TestFinalize_MintsMonotonicRunTokens(t *testing.T) {
	const userID = "user-1"
	profiles := newFakeProfileStore(userID, 0)
	photos := newFakePhotoStore(approvedHuman("p1", userID))
	dogs := &fakeDogStore{}

	svc := NewEligibilityService(profiles, photos, dogs)

	first, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.Finalize(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.RunID)
	assert.Equal(t, int64(2), second.RunID)
}

func TestComputeEligibility_PendingPhotosCountNowhere(t *testing.T) {
	const userID = "user-1"
	photos := []*models.Photo{
		approvedHuman("p1", userID),
		pendingPhoto("p2", userID, models.TargetDog, intPtr(1)),
	}

	result := computeEligibility(userID, 1, dogGroups(userID, 1), photos)

	assert.Equal(t, 1, result.ApprovedHumanCount)
	assert.False(t, result.AllDogsCovered, "pending dog photo does not cover the slot")
	assert.False(t, result.HasAnyRejected)
}
