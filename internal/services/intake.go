package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawmatch-backend/internal/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// maxEdge is the longest allowed edge after normalization.
	maxEdge = 512
	// jpegQuality balances review fidelity against transfer size.
	jpegQuality = 80
)

// ErrInvalidMediaType is returned when the declared mime type is not an image.
var ErrInvalidMediaType = errors.New("media type is not an image")

// ErrInvalidTarget is returned for an unrecognized target classification.
var ErrInvalidTarget = errors.New("target must be human or dog")

// IntakeService validates, normalizes and stores submitted photos.
type IntakeService struct {
	photos PhotoStore
	store  ObjectStore
}

// NewIntakeService creates a new media intake service.
func NewIntakeService(photos PhotoStore, store ObjectStore) *IntakeService {
	return &IntakeService{
		photos: photos,
		store:  store,
	}
}

// Upload accepts raw image bytes, normalizes them and creates the pending
// photo record. The storage write and the DB insert are sequential, not
// transactional: on a storage failure no row exists; an insert failure after
// a successful upload leaves an orphaned object that no flow ever reads.
func (s *IntakeService) Upload(
	ctx context.Context,
	userID string,
	target models.TargetType,
	dogSlot *int,
	mimeType string,
	data []byte,
) (*models.Photo, error) {
	if !strings.HasPrefix(strings.ToLower(mimeType), "image") {
		return nil, ErrInvalidMediaType
	}
	if target != models.TargetHuman && target != models.TargetDog {
		return nil, ErrInvalidTarget
	}
	if target == models.TargetHuman && dogSlot != nil {
		return nil, fmt.Errorf("dog slot not allowed for human-bucket photos")
	}
	if dogSlot != nil && *dogSlot < 1 {
		return nil, fmt.Errorf("dog slot must be >= 1")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	key := storageKey(userID, target, dogSlot)
	if err := s.store.Put(ctx, key, "image/jpeg", buf.Bytes()); err != nil {
		return nil, err
	}

	now := time.Now()
	photo := &models.Photo{
		ID:          uuid.New().String(),
		UserID:      userID,
		DogSlot:     dogSlot,
		TargetType:  target,
		StoragePath: key,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		MimeType:    "image/jpeg",
		Status:      models.PhotoStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("storage_path", key).
			Msg("Photo row insert failed after upload, object orphaned")
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	return photo, nil
}

// storageKey builds the per-user/per-target/per-slot object key with a
// timestamp+random suffix so concurrent uploads never collide.
func storageKey(userID string, target models.TargetType, dogSlot *int) string {
	slot := "self"
	if dogSlot != nil {
		slot = fmt.Sprintf("%d", *dogSlot)
	}
	return fmt.Sprintf("photos/%s/%s/%s/%d_%s.jpg",
		userID, target, slot, time.Now().UnixNano(), randomSuffix())
}

func randomSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
