package services

import (
	"context"
	"time"

	"pawmatch-backend/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const sweepBatchSize = 100

// Sweeper periodically re-dispatches validation for photos stuck in pending,
// e.g. after a hard entity-analysis failure. Photos that keep failing are
// logged each pass so operators can pull them into manual review.
type Sweeper struct {
	photos      PhotoStore
	validator   *ValidationService
	cron        *cron.Cron
	schedule    string
	pendingTTL  time.Duration
	concurrency int
}

// NewSweeper creates a new stale-photo sweeper.
func NewSweeper(photos PhotoStore, validator *ValidationService, schedule string, pendingTTL time.Duration, concurrency int) *Sweeper {
	return &Sweeper{
		photos:      photos,
		validator:   validator,
		cron:        cron.New(),
		schedule:    schedule,
		pendingTTL:  pendingTTL,
		concurrency: concurrency,
	}
}

// Start registers the sweep job and starts the cron scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Dur("pending_ttl", s.pendingTTL).
		Msg("Stale photo sweeper started")
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Stale photo sweeper stopped")
}

// sweep runs one pass: load stale pending photos and re-validate them with
// bounded concurrency. Per-photo failures are logged, never fatal to the
// pass.
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.pendingTTL)
	photos, err := s.photos.ListStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Sweep failed to list stale pending photos")
		return
	}
	if len(photos) == 0 {
		return
	}

	log.Info().Int("count", len(photos)).Msg("Re-validating stale pending photos")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, photo := range photos {
		event := models.PhotoCreatedEvent{
			ID:          photo.ID,
			UserID:      photo.UserID,
			StoragePath: photo.StoragePath,
			BucketType:  photo.TargetType,
			Status:      photo.Status,
		}
		g.Go(func() error {
			if _, err := s.validator.ProcessEvent(gctx, event); err != nil {
				log.Error().
					Err(err).
					Str("photo_id", event.ID).
					Msg("Stale photo re-validation failed, needs manual review if persistent")
			}
			return nil
		})
	}
	g.Wait()
}
