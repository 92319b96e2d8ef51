package services

import (
	"context"
	"time"

	"pawmatch-backend/internal/models"
)

// ObjectStore is the object storage capability the pipeline needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) (string, error)
}

// PhotoStore is the photo persistence capability.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Photo, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*models.Photo, error)
	Finalize(ctx context.Context, photoID string, status models.PhotoStatus,
		containsDog, containsHuman bool, reason *models.RejectionReason) error
}

// ProfileStore is the profile persistence capability.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	MintRunID(ctx context.Context, userID string) (int64, error)
	CommitDecision(ctx context.Context, userID string, runID int64,
		lifecycle models.LifecycleStatus, validation models.ValidationStatus) (bool, error)
}

// DogGroupStore exposes the declared dog groups of a user.
type DogGroupStore interface {
	ListByUser(ctx context.Context, userID string) ([]*models.DogGroup, error)
}
