package repository

import (
	"context"
	"fmt"
	"time"

	"pawmatch-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPhotoAlreadyFinal is returned when a terminal transition finds the photo
// no longer pending. Status is monotonic, so this is a no-op for callers.
var ErrPhotoAlreadyFinal = fmt.Errorf("photo already has a terminal status")

const photoColumns = `id, user_id, dog_slot, bucket_type, storage_path, width, height,
		mime_type, status, contains_dog, contains_human, rejection_reason, created_at, updated_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.UserID, &photo.DogSlot, &photo.TargetType, &photo.StoragePath,
		&photo.Width, &photo.Height, &photo.MimeType, &photo.Status,
		&photo.ContainsDog, &photo.ContainsHuman, &photo.RejectionReason,
		&photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Create inserts a new photo in pending status
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, user_id, dog_slot, bucket_type, storage_path, width, height,
			mime_type, status, contains_dog, contains_human, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.UserID, photo.DogSlot, photo.TargetType, photo.StoragePath,
		photo.Width, photo.Height, photo.MimeType, photo.Status,
		photo.ContainsDog, photo.ContainsHuman, photo.CreatedAt, photo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("photo not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// ListByUser retrieves all photos for a user regardless of status
func (r *PhotoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// ListStalePending retrieves photos still pending after the given cutoff.
func (r *PhotoRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// Finalize commits the one allowed terminal transition for a photo. The
// WHERE clause enforces monotonicity at the storage layer: if the photo is
// no longer pending the update matches zero rows and ErrPhotoAlreadyFinal
// is returned.
func (r *PhotoRepository) Finalize(
	ctx context.Context,
	photoID string,
	status models.PhotoStatus,
	containsDog, containsHuman bool,
	reason *models.RejectionReason,
) error {
	query := `
		UPDATE photos
		SET status = $1, contains_dog = $2, contains_human = $3, rejection_reason = $4, updated_at = now()
		WHERE id = $5 AND status = 'pending'
	`
	result, err := r.db.Exec(ctx, query, status, containsDog, containsHuman, reason, photoID)
	if err != nil {
		return fmt.Errorf("failed to finalize photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPhotoAlreadyFinal
	}
	return nil
}
