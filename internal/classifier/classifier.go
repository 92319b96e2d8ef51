// Package classifier defines the moderation/vision capability the validation
// pipeline depends on, decoupled from any specific provider.
package classifier

import "context"

// ModerationResult is the fast-path policy check outcome.
type ModerationResult struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
	Confidence float64  `json:"confidence"`
}

// AnalysisResult is the richer entity/content analysis outcome. Flagged is a
// secondary policy screen used as a fallback when moderation is unavailable.
type AnalysisResult struct {
	HasHuman       bool `json:"has_human"`
	HasDog         bool `json:"has_dog"`
	HasContactInfo bool `json:"has_contact_info"`
	IsScreenshot   bool `json:"is_screenshot"`
	Flagged        bool `json:"flagged"`
}

// Classifier is the port to an external moderation/vision capability. Both
// calls take an addressable image URL. A returned error means the call was
// inconclusive; callers must not treat it as an implicit pass or fail.
type Classifier interface {
	// Moderate is the cheap fast-path filter for clearly violating content.
	Moderate(ctx context.Context, imageURL string) (*ModerationResult, error)
	// Analyze detects humans, dogs, readable contact info, and screenshots,
	// and screens for policy violations as a fallback.
	Analyze(ctx context.Context, imageURL string) (*AnalysisResult, error)
}
