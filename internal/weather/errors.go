package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a run is requested with neither a place
	// name nor coordinates. No network calls are made.
	ErrEmptyQuery = errors.New("no place name or coordinates given")

	// ErrMissingCredential is returned when the weather provider has no usable
	// API key configured. No network calls are made.
	ErrMissingCredential = errors.New("weather provider API key is not configured")

	// ErrNoAirData means the air-quality provider answered successfully but
	// returned zero samples for the coordinates. Distinct from a fetch failure.
	ErrNoAirData = errors.New("no air quality data for location")

	// ErrNoUsableText means the narrative provider responded without the
	// expected candidate text path. Resolved to a fixed placeholder string by
	// the pipeline, never escalated.
	ErrNoUsableText = errors.New("narrative response contained no usable text")
)

// FetchError is an upstream HTTP failure. Message carries the provider's own
// message when the error body had one, otherwise the raw body truncated to
// 200 characters.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}
