package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-insight/internal/weather"
)

// placeholderKey is the value commonly left in sample configs; it is treated
// the same as no key at all.
const placeholderKey = "YOUR_API_KEY_HERE"

// OpenWeatherClient implements weather.WeatherSource against the
// OpenWeatherMap current-weather, forecast and air-pollution endpoints.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherClient(client *http.Client, apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		client:  client,
		circuit: newBreaker("openweather"),
	}
}

// Configured reports whether a usable API key is present.
func (c *OpenWeatherClient) Configured() bool {
	return c.apiKey != "" && c.apiKey != placeholderKey
}

// Current fetches current conditions. A coordinate query is passed through
// verbatim; a text query relies on the provider's place-name matching. The
// response's own coord block is the canonical coordinate source for the rest
// of a pipeline run.
func (c *OpenWeatherClient) Current(ctx context.Context, q weather.Query, units weather.Units) (weather.CurrentConditions, error) {
	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("units", string(units))
	if q.Coords != nil {
		values.Set("lat", formatCoord(q.Coords.Lat))
		values.Set("lon", formatCoord(q.Coords.Lon))
	} else {
		values.Set("q", q.Text)
	}

	body, err := c.get(ctx, "/weather", values)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Dt         int64 `json:"dt"`
		Timezone   int   `json:"timezone"`
		Visibility int   `json:"visibility"`
		Main       struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Sys struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("decode current weather: %w", err)
	}

	cond := weather.CurrentConditions{
		PlaceName:        payload.Name,
		Country:          payload.Sys.Country,
		ObservedAt:       payload.Dt,
		TimezoneOffset:   payload.Timezone,
		Temp:             payload.Main.Temp,
		FeelsLike:        payload.Main.FeelsLike,
		Humidity:         payload.Main.Humidity,
		WindSpeed:        payload.Wind.Speed,
		Pressure:         payload.Main.Pressure,
		VisibilityMeters: payload.Visibility,
		Sunrise:          payload.Sys.Sunrise,
		Sunset:           payload.Sys.Sunset,
		Coord:            weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
	}
	if len(payload.Weather) > 0 {
		cond.Description = payload.Weather[0].Description
		cond.Icon = payload.Weather[0].Icon
	}
	return cond, nil
}

// Forecast fetches the 3-hour forecast series at the given coordinates.
func (c *OpenWeatherClient) Forecast(ctx context.Context, coord weather.Coordinates, units weather.Units) (weather.ForecastSeries, error) {
	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("units", string(units))
	values.Set("lat", formatCoord(coord.Lat))
	values.Set("lon", formatCoord(coord.Lon))

	body, err := c.get(ctx, "/forecast", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				TempMin   float64 `json:"temp_min"`
				TempMax   float64 `json:"temp_max"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
				Icon        string `json:"icon"`
			} `json:"weather"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	series := make(weather.ForecastSeries, 0, len(payload.List))
	for _, item := range payload.List {
		sample := weather.ForecastSample{
			Epoch:     item.Dt,
			Temp:      item.Main.Temp,
			FeelsLike: item.Main.FeelsLike,
			TempMin:   item.Main.TempMin,
			TempMax:   item.Main.TempMax,
			WindSpeed: item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
			sample.Icon = item.Weather[0].Icon
		}
		series = append(series, sample)
	}
	return series, nil
}

// AirQuality fetches the air-pollution sample at the given coordinates. The
// endpoint takes no unit system. An empty sample list is reported as
// weather.ErrNoAirData, distinct from a fetch failure.
func (c *OpenWeatherClient) AirQuality(ctx context.Context, coord weather.Coordinates) (*weather.AirQualitySample, error) {
	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("lat", formatCoord(coord.Lat))
	values.Set("lon", formatCoord(coord.Lon))

	body, err := c.get(ctx, "/air_pollution", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		List []struct {
			Main struct {
				Aqi int `json:"aqi"`
			} `json:"main"`
			Components struct {
				CO   float64 `json:"co"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
				SO2  float64 `json:"so2"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode air quality: %w", err)
	}

	if len(payload.List) == 0 {
		return nil, weather.ErrNoAirData
	}

	first := payload.List[0]
	return &weather.AirQualitySample{
		Index: first.Main.Aqi,
		Components: weather.AirComponents{
			CO:   first.Components.CO,
			NO2:  first.Components.NO2,
			O3:   first.Components.O3,
			SO2:  first.Components.SO2,
			PM25: first.Components.PM25,
			PM10: first.Components.PM10,
		},
	}, nil
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return doRequest(ctx, c.client, c.circuit, req)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
