package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pawmatch-backend/internal/classifier"
	"pawmatch-backend/internal/models"
	"pawmatch-backend/internal/repository"
)

type fakePhotoStore struct {
	mu        sync.Mutex
	photos    map[string]*models.Photo
	createErr error
}

func newFakePhotoStore(photos ...*models.Photo) *fakePhotoStore {
	s := &fakePhotoStore{photos: make(map[string]*models.Photo)}
	for _, p := range photos {
		copied := *p
		s.photos[p.ID] = &copied
	}
	return s
}

func (s *fakePhotoStore) Create(_ context.Context, photo *models.Photo) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *photo
	s.photos[photo.ID] = &copied
	return nil
}

func (s *fakePhotoStore) GetByID(_ context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	photo, ok := s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo not found")
	}
	copied := *photo
	return &copied, nil
}

func (s *fakePhotoStore) ListByUser(_ context.Context, userID string) ([]*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Photo
	for _, photo := range s.photos {
		if photo.UserID == userID {
			copied := *photo
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakePhotoStore) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Photo
	for _, photo := range s.photos {
		if photo.Status == models.PhotoStatusPending && photo.CreatedAt.Before(olderThan) && len(out) < limit {
			copied := *photo
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakePhotoStore) Finalize(
	_ context.Context,
	photoID string,
	status models.PhotoStatus,
	containsDog, containsHuman bool,
	reason *models.RejectionReason,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	photo, ok := s.photos[photoID]
	if !ok {
		return fmt.Errorf("photo not found")
	}
	if photo.Status != models.PhotoStatusPending {
		return repository.ErrPhotoAlreadyFinal
	}
	photo.Status = status
	photo.ContainsDog = containsDog
	photo.ContainsHuman = containsHuman
	photo.RejectionReason = reason
	photo.UpdatedAt = time.Now()
	return nil
}

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	urlErr    error
	deleted   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(_ context.Context, key, _ string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *fakeObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeObjectStore) PublicURL(key string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://cdn.test/" + key, nil
}

type fakeClassifier struct {
	moderation    *classifier.ModerationResult
	moderationErr error
	analysis      *classifier.AnalysisResult
	analysisErr   error
	moderateCalls int
	analyzeCalls  int
}

func (c *fakeClassifier) Moderate(context.Context, string) (*classifier.ModerationResult, error) {
	c.moderateCalls++
	if c.moderationErr != nil {
		return nil, c.moderationErr
	}
	return c.moderation, nil
}

func (c *fakeClassifier) Analyze(context.Context, string) (*classifier.AnalysisResult, error) {
	c.analyzeCalls++
	if c.analysisErr != nil {
		return nil, c.analysisErr
	}
	return c.analysis, nil
}

type fakeProfileStore struct {
	mu      sync.Mutex
	profile *models.Profile
	commits int
}

func newFakeProfileStore(userID string, runID int64) *fakeProfileStore {
	return &fakeProfileStore{
		profile: &models.Profile{
			UserID:           userID,
			LifecycleStatus:  models.LifecyclePendingReview,
			ValidationStatus: models.ValidationFailedRequirements,
			ValidationRunID:  runID,
		},
	}
}

func (s *fakeProfileStore) GetByUserID(context.Context, string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.profile
	return &copied, nil
}

func (s *fakeProfileStore) MintRunID(context.Context, string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.ValidationRunID++
	return s.profile.ValidationRunID, nil
}

func (s *fakeProfileStore) CommitDecision(
	_ context.Context,
	_ string,
	runID int64,
	lifecycle models.LifecycleStatus,
	validation models.ValidationStatus,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile.ValidationRunID != runID {
		return false, nil
	}
	s.profile.LifecycleStatus = lifecycle
	s.profile.ValidationStatus = validation
	s.commits++
	return true, nil
}

type fakeDogStore struct {
	groups []*models.DogGroup
}

func (s *fakeDogStore) ListByUser(context.Context, string) ([]*models.DogGroup, error) {
	return s.groups, nil
}

func intPtr(v int) *int { return &v }

func pendingPhoto(id, userID string, target models.TargetType, dogSlot *int) *models.Photo {
	return &models.Photo{
		ID:          id,
		UserID:      userID,
		DogSlot:     dogSlot,
		TargetType:  target,
		StoragePath: "photos/" + userID + "/" + string(target) + "/self/1_test.jpg",
		Status:      models.PhotoStatusPending,
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
}
