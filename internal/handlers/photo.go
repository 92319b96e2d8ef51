package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"pawmatch-backend/internal/middleware"
	"pawmatch-backend/internal/models"
	"pawmatch-backend/internal/services"
	"pawmatch-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps the multipart upload size.
const maxUploadBytes = 20 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	intake     *services.IntakeService
	validation *services.ValidationService
	photos     services.PhotoStore
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(intake *services.IntakeService, validation *services.ValidationService, photos services.PhotoStore) *PhotoHandler {
	return &PhotoHandler{
		intake:     intake,
		validation: validation,
		photos:     photos,
	}
}

// UploadPhoto handles POST /api/v1/photos. Multipart fields: file,
// target_type (human|dog), dog_slot (optional). On success the photo row is
// returned in pending status and validation is dispatched asynchronously.
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	target := models.TargetType(r.FormValue("target_type"))

	var dogSlot *int
	if slotStr := r.FormValue("dog_slot"); slotStr != "" {
		slot, err := strconv.Atoi(slotStr)
		if err != nil {
			respondError(w, "dog_slot must be an integer", http.StatusBadRequest)
			return
		}
		dogSlot = &slot
	}

	photo, err := h.intake.Upload(ctx, userID, target, dogSlot, header.Header.Get("Content-Type"), data)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("target_type", string(target)).
			Msg("Photo intake failed")

		switch {
		case errors.Is(err, services.ErrInvalidMediaType), errors.Is(err, services.ErrInvalidTarget):
			respondError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, storage.ErrWriteConflict):
			respondError(w, "Storage write conflict, please retry the upload", http.StatusConflict)
		default:
			respondError(w, "Failed to upload photo", http.StatusInternalServerError)
		}
		return
	}

	h.validation.DispatchAsync(models.PhotoCreatedEvent{
		ID:          photo.ID,
		UserID:      photo.UserID,
		StoragePath: photo.StoragePath,
		BucketType:  photo.TargetType,
		Status:      photo.Status,
	})

	log.Info().
		Str("user_id", userID).
		Str("photo_id", photo.ID).
		Str("target_type", string(target)).
		Msg("Photo accepted for validation")

	respondJSON(w, http.StatusAccepted, photo)
}

// GetPhotos handles GET /api/v1/photos
func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	photos, err := h.photos.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list photos")
		respondError(w, "Failed to list photos", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"photos": photos,
		"total":  len(photos),
	})
}
