package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/weather"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient(srv.Client(), "gm-key")
	c.baseURL = srv.URL
	return c
}

func TestGenerateSendsPromptAndExtractsText(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "gm-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Equal(t, "describe the weather", req.Contents[0].Parts[0].Text)

		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "A mild and breezy day."}]}}]}`))
	})

	text, err := c.Generate(context.Background(), "describe the weather")
	require.NoError(t, err)
	assert.Equal(t, "A mild and breezy day.", text)
}

func TestGenerateNoCandidates(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	})

	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, weather.ErrNoUsableText)
}

func TestGenerateEmptyText(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": ""}]}}]}`))
	})

	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, weather.ErrNoUsableText)
}

func TestGenerateUpstreamError(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "quota exceeded"}`))
	})

	_, err := c.Generate(context.Background(), "p")

	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusTooManyRequests, fe.Status)
	assert.Equal(t, "quota exceeded", fe.Message)
}
