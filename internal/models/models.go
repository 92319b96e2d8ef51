package models

import "time"

// PhotoStatus is the per-photo validation state. Transitions are monotonic:
// pending moves to exactly one terminal status and never reverts.
type PhotoStatus string

const (
	PhotoStatusPending  PhotoStatus = "pending"
	PhotoStatusApproved PhotoStatus = "approved"
	PhotoStatusRejected PhotoStatus = "rejected"
)

// Terminal reports whether the status is approved or rejected.
func (s PhotoStatus) Terminal() bool {
	return s == PhotoStatusApproved || s == PhotoStatusRejected
}

// TargetType is the subject a photo was submitted for.
type TargetType string

const (
	TargetHuman TargetType = "human"
	TargetDog   TargetType = "dog"
)

// RejectionReason is a stable string enum consumed by the client UI.
type RejectionReason string

const (
	ReasonNSFWOrDisallowed    RejectionReason = "nsfw_or_disallowed"
	ReasonIsScreenshot        RejectionReason = "is_screenshot"
	ReasonContainsContact     RejectionReason = "contains_contact_info"
	ReasonMissingHuman        RejectionReason = "missing_human"
	ReasonMissingDog          RejectionReason = "missing_dog"
	ReasonDogInsteadOfHuman   RejectionReason = "dog_instead_of_human"
	ReasonHumanInsteadOfDog   RejectionReason = "human_instead_of_dog"
	ReasonUnknownTargetType   RejectionReason = "unknown_target_type"
	ReasonFailedToGenerateURL RejectionReason = "failed_to_generate_url"
)

// LifecycleStatus is the profile's overall visibility state.
type LifecycleStatus string

const (
	LifecyclePendingReview LifecycleStatus = "pending_review"
	LifecycleLimited       LifecycleStatus = "limited"
	LifecycleActive        LifecycleStatus = "active"
)

// ValidationStatus explains the most recent lifecycle decision.
type ValidationStatus string

const (
	ValidationPassed             ValidationStatus = "passed"
	ValidationFailedPhotos       ValidationStatus = "failed_photos"
	ValidationFailedRequirements ValidationStatus = "failed_requirements"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo represents a submitted photo and its validation outcome.
// TargetType never changes after creation. A rejected photo keeps its row
// as an audit entry even though the storage object is deleted.
type Photo struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	DogSlot         *int             `json:"dog_slot,omitempty"`
	TargetType      TargetType       `json:"bucket_type"`
	StoragePath     string           `json:"storage_path"`
	Width           int              `json:"width"`
	Height          int              `json:"height"`
	MimeType        string           `json:"mime_type"`
	Status          PhotoStatus      `json:"status"`
	ContainsDog     bool             `json:"contains_dog"`
	ContainsHuman   bool             `json:"contains_human"`
	RejectionReason *RejectionReason `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Profile holds the profile-level validation state for a user.
// LifecycleStatus and ValidationStatus are written only by the eligibility
// aggregator, guarded by ValidationRunID.
type Profile struct {
	UserID           string           `json:"user_id"`
	LifecycleStatus  LifecycleStatus  `json:"lifecycle_status"`
	ValidationStatus ValidationStatus `json:"validation_status"`
	ValidationRunID  int64            `json:"validation_run_id"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// DogGroup is one declared dog, identified by (user id, slot).
type DogGroup struct {
	UserID    string    `json:"user_id"`
	Slot      int       `json:"slot"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PhotoCreatedEvent is the trigger payload delivered when a photo row is
// inserted. TargetType may be absent and defaults to BucketType.
type PhotoCreatedEvent struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	StoragePath string      `json:"storage_path"`
	BucketType  TargetType  `json:"bucket_type"`
	TargetType  TargetType  `json:"target_type,omitempty"`
	Status      PhotoStatus `json:"status"`
}

// Target returns the effective target classification for the event.
func (e PhotoCreatedEvent) Target() TargetType {
	if e.TargetType != "" {
		return e.TargetType
	}
	return e.BucketType
}
