package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteClassifier calls an HTTP moderation/vision provider. It implements
// Classifier and can be swapped for an on-device model later.
type RemoteClassifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteClassifier creates a classifier backed by a remote provider.
func NewRemoteClassifier(baseURL, apiKey string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Moderate calls the provider's moderation endpoint.
func (c *RemoteClassifier) Moderate(ctx context.Context, imageURL string) (*ModerationResult, error) {
	var result ModerationResult
	if err := c.post(ctx, "/v1/moderate", imageURL, &result); err != nil {
		return nil, fmt.Errorf("moderation call failed: %w", err)
	}
	return &result, nil
}

// Analyze calls the provider's image analysis endpoint.
func (c *RemoteClassifier) Analyze(ctx context.Context, imageURL string) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.post(ctx, "/v1/analyze", imageURL, &result); err != nil {
		return nil, fmt.Errorf("analysis call failed: %w", err)
	}
	return &result, nil
}

func (c *RemoteClassifier) post(ctx context.Context, path, imageURL string, out interface{}) error {
	payload, err := json.Marshal(map[string]string{"image_url": imageURL})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
