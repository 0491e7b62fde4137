package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-insight/internal/weather"
)

const maxBodyBytes = 1 << 20

// rawMessageLimit caps how much of a non-JSON error body is surfaced to users.
const rawMessageLimit = 200

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// upstreamError converts a non-2xx response into a FetchError carrying the
// provider's own message when the body has one, otherwise the raw body
// truncated to 200 characters.
func upstreamError(status int, body []byte) *weather.FetchError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &weather.FetchError{Status: status, Message: payload.Message}
	}

	raw := string(body)
	if len(raw) > rawMessageLimit {
		raw = raw[:rawMessageLimit]
	}
	return &weather.FetchError{Status: status, Message: raw}
}

// doRequest executes one HTTP attempt through the circuit breaker and returns
// the response body. Exactly one attempt per request: an open breaker fails
// fast and nothing is ever re-issued.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) ([]byte, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, upstreamError(resp.StatusCode, body)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}
