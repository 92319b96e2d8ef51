package repository

import (
	"context"
	"fmt"

	"pawmatch-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts the initial profile row for a user
func (r *ProfileRepository) Create(ctx context.Context, userID string) error {
	query := `
		INSERT INTO profiles (user_id, lifecycle_status, validation_status, validation_run_id)
		VALUES ($1, $2, $3, 0)
	`
	_, err := r.db.Exec(ctx, query, userID, models.LifecyclePendingReview, models.ValidationFailedRequirements)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves a profile by user ID
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, lifecycle_status, validation_status, validation_run_id, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var profile models.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.LifecycleStatus, &profile.ValidationStatus,
		&profile.ValidationRunID, &profile.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("profile not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// MintRunID atomically increments and returns the profile's validation run
// token. Every eligibility pass must thread the returned token through to
// CommitDecision.
func (r *ProfileRepository) MintRunID(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE profiles
		SET validation_run_id = validation_run_id + 1, updated_at = now()
		WHERE user_id = $1
		RETURNING validation_run_id
	`
	var runID int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&runID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, fmt.Errorf("profile not found: %w", err)
		}
		return 0, fmt.Errorf("failed to mint validation run id: %w", err)
	}
	return runID, nil
}

// CommitDecision writes the aggregator's decision, conditioned on the stored
// run token still matching runID. Returns (false, nil) when the token no
// longer matches: a newer run has superseded this one and must win.
func (r *ProfileRepository) CommitDecision(
	ctx context.Context,
	userID string,
	runID int64,
	lifecycle models.LifecycleStatus,
	validation models.ValidationStatus,
) (bool, error) {
	query := `
		UPDATE profiles
		SET lifecycle_status = $1, validation_status = $2, updated_at = now()
		WHERE user_id = $3 AND validation_run_id = $4
	`
	result, err := r.db.Exec(ctx, query, lifecycle, validation, userID, runID)
	if err != nil {
		return false, fmt.Errorf("failed to commit profile decision: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
