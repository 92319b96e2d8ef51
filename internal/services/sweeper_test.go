package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pawmatch-backend/internal/classifier"
	"pawmatch-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_RevalidatesStalePendingPhotos(t *testing.T) {
	stale := pendingPhoto("stale-1", "user-1", models.TargetHuman, nil)
	fresh := pendingPhoto("fresh-1", "user-1", models.TargetHuman, nil)
	fresh.CreatedAt = time.Now()
	done := pendingPhoto("done-1", "user-1", models.TargetHuman, nil)
	done.Status = models.PhotoStatusApproved

	photos := newFakePhotoStore(stale, fresh, done)
	cls := &fakeClassifier{
		moderation: &classifier.ModerationResult{},
		analysis:   &classifier.AnalysisResult{HasHuman: true},
	}
	validator := NewValidationService(photos, newFakeObjectStore(), cls, nil)

	sweeper := NewSweeper(photos, validator, "@every 5m", 15*time.Minute, 2)
	sweeper.sweep()

	got, err := photos.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusApproved, got.Status, "stale pending photo re-validated")

	got, err = photos.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusPending, got.Status, "fresh pending photo untouched")
}

func TestSweep_FailuresLeavePhotoPendingForNextPass(t *testing.T) {
	stale := pendingPhoto("stale-1", "user-1", models.TargetHuman, nil)
	photos := newFakePhotoStore(stale)
	cls := &fakeClassifier{
		moderation:  &classifier.ModerationResult{},
		analysisErr: errors.New("provider down"),
	}
	validator := NewValidationService(photos, newFakeObjectStore(), cls, nil)

	sweeper := NewSweeper(photos, validator, "@every 5m", 15*time.Minute, 2)
	sweeper.sweep()

	got, err := photos.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhotoStatusPending, got.Status)
	assert.Equal(t, 1, cls.analyzeCalls)
}
