// Package geo resolves a caller's approximate position from their IP address.
// It is the service-side stand-in for device geolocation: failures are split
// into the same three kinds (denied, unavailable, timeout) so the caller can
// fall back to a default city with a matching advisory.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/i474232898/weather-insight/internal/weather"
)

// Kind classifies a geolocation failure.
type Kind string

const (
	KindPermissionDenied Kind = "permission_denied"
	KindUnavailable      Kind = "position_unavailable"
	KindTimeout          Kind = "timeout"
)

// Error is a classified geolocation failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("geolocation %s: %s", e.Kind, e.Msg)
}

// Locator resolves the position for a client IP.
type Locator interface {
	Locate(ctx context.Context, clientIP string) (weather.Coordinates, error)
}

// IPLocator queries an ip-api.com style endpoint. Every lookup waits at most
// Timeout before failing with KindTimeout.
type IPLocator struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

const defaultIPAPIBase = "http://ip-api.com/json"

func NewIPLocator(client *http.Client, timeout time.Duration) *IPLocator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IPLocator{
		baseURL: defaultIPAPIBase,
		client:  client,
		timeout: timeout,
	}
}

// Locate resolves clientIP to coordinates. The three failure kinds map onto
// the upstream behavior: 403 means the lookup was refused, a "fail" status or
// transport error means the position is unavailable, and a deadline hit means
// timeout.
func (l *IPLocator) Locate(ctx context.Context, clientIP string) (weather.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s?fields=status,message,lat,lon", l.baseURL, clientIP)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return weather.Coordinates{}, &Error{Kind: KindUnavailable, Msg: err.Error()}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return weather.Coordinates{}, &Error{Kind: KindTimeout, Msg: "geolocation request timed out"}
		}
		return weather.Coordinates{}, &Error{Kind: KindUnavailable, Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return weather.Coordinates{}, &Error{Kind: KindPermissionDenied, Msg: "geolocation lookup refused"}
	}
	if resp.StatusCode != http.StatusOK {
		return weather.Coordinates{}, &Error{Kind: KindUnavailable, Msg: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return weather.Coordinates{}, &Error{Kind: KindUnavailable, Msg: err.Error()}
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Coordinates{}, &Error{Kind: KindUnavailable, Msg: err.Error()}
	}
	if payload.Status != "success" {
		return weather.Coordinates{}, &Error{Kind: KindUnavailable, Msg: payload.Message}
	}

	return weather.Coordinates{Lat: payload.Lat, Lon: payload.Lon}, nil
}

// Advisory renders the user-facing recovery message for a geolocation
// failure, naming the fallback city the caller is about to use.
func Advisory(err error, fallbackCity string) string {
	suffix := fmt.Sprintf("Showing weather for a default city (%s).", fallbackCity)

	var gerr *Error
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case KindPermissionDenied:
			return "Location access denied. Please allow location access to use this feature. " + suffix
		case KindTimeout:
			return "Request to get user location timed out. " + suffix
		}
	}
	return "Location information unavailable. " + suffix
}
