package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-insight/internal/weather"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

// GeminiClient implements weather.Narrator against the Gemini generateContent
// endpoint.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewGeminiClient(client *http.Client, apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultGeminiURL,
		client:  client,
		circuit: newBreaker("gemini"),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// Generate sends one prompt and extracts the first candidate's text. A
// well-formed response without that path yields weather.ErrNoUsableText; the
// caller substitutes a fixed placeholder instead of failing.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode narrative request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := doRequest(ctx, c.client, c.circuit, req)
	if err != nil {
		return "", err
	}

	var decoded struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode narrative response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 ||
		decoded.Candidates[0].Content.Parts[0].Text == "" {
		return "", weather.ErrNoUsableText
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
