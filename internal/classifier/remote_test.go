package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteClassifier_Moderate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/moderate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn.test/photo.jpg", req["image_url"])

		json.NewEncoder(w).Encode(ModerationResult{Flagged: true, Categories: []string{"nudity"}, Confidence: 0.97})
	}))
	defer srv.Close()

	cls := NewRemoteClassifier(srv.URL, "test-key", time.Second)
	result, err := cls.Moderate(context.Background(), "https://cdn.test/photo.jpg")
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Equal(t, []string{"nudity"}, result.Categories)
}

func TestRemoteClassifier_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		json.NewEncoder(w).Encode(AnalysisResult{HasDog: true, HasHuman: false})
	}))
	defer srv.Close()

	cls := NewRemoteClassifier(srv.URL, "", time.Second)
	result, err := cls.Analyze(context.Background(), "https://cdn.test/photo.jpg")
	require.NoError(t, err)

	assert.True(t, result.HasDog)
	assert.False(t, result.HasHuman)
}

func TestRemoteClassifier_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	cls := NewRemoteClassifier(srv.URL, "", time.Second)

	_, err := cls.Moderate(context.Background(), "https://cdn.test/photo.jpg")
	assert.Error(t, err)

	_, err = cls.Analyze(context.Background(), "https://cdn.test/photo.jpg")
	assert.Error(t, err)
}

func TestRemoteClassifier_TimeoutIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cls := NewRemoteClassifier(srv.URL, "", 50*time.Millisecond)

	_, err := cls.Analyze(context.Background(), "https://cdn.test/photo.jpg")
	assert.Error(t, err)
}
