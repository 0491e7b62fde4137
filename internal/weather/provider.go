package weather

import "context"

// WeatherSource abstracts the external weather data provider. A text query is
// resolved by the provider's own place-name matching; a coordinate query is
// passed through verbatim. Canonical coordinates and the corrected place name
// are only known from the Current response.
type WeatherSource interface {
	// Configured reports whether a usable credential is present. Checked
	// before any network call is made.
	Configured() bool

	Current(ctx context.Context, q Query, units Units) (CurrentConditions, error)
	Forecast(ctx context.Context, coord Coordinates, units Units) (ForecastSeries, error)

	// AirQuality returns ErrNoAirData when the provider answers with an empty
	// sample list for the coordinates.
	AirQuality(ctx context.Context, coord Coordinates) (*AirQualitySample, error)
}

// Narrator abstracts the generative-text provider. Generate returns
// ErrNoUsableText when the response carries no candidate text.
type Narrator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HistoryRecorder receives resolved place names after a successful
// current-conditions fetch.
type HistoryRecorder interface {
	RememberSearch(name string) error
}
