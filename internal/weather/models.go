package weather

// Units selects the measurement system for fetched values and display formatting.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether u is a known unit system.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// Symbol returns the temperature symbol for the unit system.
func (u Units) Symbol() string {
	if u == UnitsImperial {
		return "F"
	}
	return "C"
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Query identifies the location to aggregate data for. Either Text holds a
// free-form place name, or Coords holds device coordinates. Coordinates take
// precedence when both are set.
type Query struct {
	Text   string
	Coords *Coordinates
}

// TextQuery builds a place-name query.
func TextQuery(name string) Query {
	return Query{Text: name}
}

// CoordsQuery builds a coordinate query.
func CoordsQuery(lat, lon float64) Query {
	return Query{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// IsEmpty reports whether the query names no location at all.
func (q Query) IsEmpty() bool {
	return q.Text == "" && q.Coords == nil
}

// CurrentConditions is the normalized current-weather observation for a
// resolved location. Created fresh on every successful fetch and never mutated.
type CurrentConditions struct {
	PlaceName      string  `json:"placeName"`
	Country        string  `json:"country"`
	ObservedAt     int64   `json:"observedAt"`     // UTC epoch seconds
	TimezoneOffset int     `json:"timezoneOffset"` // seconds east of UTC
	Temp           float64 `json:"temp"`
	FeelsLike      float64 `json:"feelsLike"`
	Humidity       int     `json:"humidityPercent"`
	WindSpeed      float64 `json:"windSpeed"`
	Pressure       float64 `json:"pressureHpa"`
	// VisibilityMeters is zero when the provider omits visibility.
	VisibilityMeters int         `json:"visibilityMeters,omitempty"`
	Sunrise          int64       `json:"sunrise,omitempty"`
	Sunset           int64       `json:"sunset,omitempty"`
	Description      string      `json:"description"`
	Icon             string      `json:"icon"`
	Coord            Coordinates `json:"coord"`
}

// AirComponents holds pollutant concentrations in μg/m³.
type AirComponents struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

// AirQualitySample is one air-quality reading. Index is the ordinal 1-5 AQI.
type AirQualitySample struct {
	Index      int           `json:"aqi"`
	Components AirComponents `json:"components"`
}

// ForecastSample is a single 3-hour forecast entry.
type ForecastSample struct {
	Epoch       int64   `json:"epoch"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feelsLike"`
	TempMin     float64 `json:"tempMin"`
	TempMax     float64 `json:"tempMax"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"windSpeed"`
}

// ForecastSeries is a time-ordered sequence of 3-hour samples, typically 40
// entries covering five days.
type ForecastSeries []ForecastSample

// DailyDigest holds one representative sample per distinct local calendar
// date, in first-seen order. See ReduceDaily.
type DailyDigest []ForecastSample

// SlotState tags the lifecycle of one narrative slot.
type SlotState string

const (
	SlotPending SlotState = "pending"
	SlotReady   SlotState = "ready"
	SlotFailed  SlotState = "failed"
)

// NarrativeSlot is one independently-populated generated-text field.
// Text is set only in the ready state; Reason only in the failed state.
type NarrativeSlot struct {
	State  SlotState `json:"state"`
	Text   string    `json:"text,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

func readySlot(text string) NarrativeSlot {
	return NarrativeSlot{State: SlotReady, Text: text}
}

func failedSlot(reason string) NarrativeSlot {
	return NarrativeSlot{State: SlotFailed, Reason: reason}
}

// NarrativeBundle carries the four narrative slots. Each slot's outcome is
// independent of the others.
type NarrativeBundle struct {
	Overview NarrativeSlot `json:"overview"`
	Hourly   NarrativeSlot `json:"hourly"`
	Alert    NarrativeSlot `json:"alert"`
	Clothing NarrativeSlot `json:"clothing"`
}

func pendingBundle() NarrativeBundle {
	p := NarrativeSlot{State: SlotPending}
	return NarrativeBundle{Overview: p, Hourly: p, Alert: p, Clothing: p}
}

// AggregateResult is the composite outcome of one pipeline run. Air is nil
// when air-quality data is absent; AirNotice then explains why.
type AggregateResult struct {
	Generation uint64            `json:"generation"`
	Units      Units             `json:"units"`
	PlaceName  string            `json:"placeName"`
	Current    CurrentConditions `json:"current"`
	LocalTime  string            `json:"localTime"`
	Air        *AirQualitySample `json:"air,omitempty"`
	AirNotice  string            `json:"airNotice,omitempty"`
	Forecast   ForecastSeries    `json:"forecast"`
	Daily      DailyDigest       `json:"daily"`
	Narratives NarrativeBundle   `json:"narratives"`
	MapURL     string            `json:"mapUrl"`
}
