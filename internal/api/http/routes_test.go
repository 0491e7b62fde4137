package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-insight/internal/geo"
	"github.com/i474232898/weather-insight/internal/store"
	"github.com/i474232898/weather-insight/internal/weather"
)

type fakeRunner struct {
	res *weather.AggregateResult
	err error

	gotQuery weather.Query
	gotUnits weather.Units
	calls    int
}

func (f *fakeRunner) Run(_ context.Context, q weather.Query, units weather.Units) (*weather.AggregateResult, error) {
	f.calls++
	f.gotQuery = q
	f.gotUnits = units
	return f.res, f.err
}

type fakePrefs struct {
	prefs   store.Preferences
	history []string
	setErr  error
	got     *store.Preferences
}

func (f *fakePrefs) Preferences() store.Preferences { return f.prefs }
func (f *fakePrefs) History() []string              { return f.history }
func (f *fakePrefs) SetPreferences(p store.Preferences) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.got = &p
	return nil
}

type fakeLocator struct {
	coords weather.Coordinates
	err    error
}

func (f *fakeLocator) Locate(_ context.Context, _ string) (weather.Coordinates, error) {
	return f.coords, f.err
}

func newTestApp(deps Deps) *fiber.App {
	if deps.Prefs == nil {
		deps.Prefs = &fakePrefs{prefs: store.DefaultPreferences()}
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})
	RegisterRoutes(app, deps)
	return app
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]json.RawMessage) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	return resp.StatusCode, decoded
}

func errorMessage(t *testing.T, decoded map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(decoded["message"], &msg))
	return msg
}

func TestWeatherTextQuery(t *testing.T) {
	runner := &fakeRunner{res: &weather.AggregateResult{PlaceName: "London"}}
	app := newTestApp(Deps{Pipeline: runner})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=London&units=imperial", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "London", runner.gotQuery.Text)
	assert.Equal(t, weather.UnitsImperial, runner.gotUnits)
	assert.Contains(t, string(decoded["result"]), `"London"`)
}

func TestWeatherUnitsDefaultFromPreferences(t *testing.T) {
	runner := &fakeRunner{res: &weather.AggregateResult{}}
	prefs := &fakePrefs{prefs: store.Preferences{Unit: weather.UnitsImperial, Theme: store.ThemeLight}}
	app := newTestApp(Deps{Pipeline: runner, Prefs: prefs})

	status, _ := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=London", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, weather.UnitsImperial, runner.gotUnits)
}

func TestWeatherInvalidUnits(t *testing.T) {
	runner := &fakeRunner{}
	app := newTestApp(Deps{Pipeline: runner})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=London&units=kelvin", nil))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "units must be metric or imperial", errorMessage(t, decoded))
	assert.Zero(t, runner.calls)
}

func TestWeatherCoordinateQuery(t *testing.T) {
	runner := &fakeRunner{res: &weather.AggregateResult{}}
	app := newTestApp(Deps{Pipeline: runner})

	status, _ := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=48.85&lon=2.35", nil))

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, runner.gotQuery.Coords)
	assert.Equal(t, 48.85, runner.gotQuery.Coords.Lat)
	assert.Equal(t, 2.35, runner.gotQuery.Coords.Lon)
}

func TestWeatherMalformedCoordinates(t *testing.T) {
	runner := &fakeRunner{}
	app := newTestApp(Deps{Pipeline: runner})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=abc&lon=2.35", nil))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "lat and lon must both be valid numbers", errorMessage(t, decoded))
	assert.Zero(t, runner.calls)
}

func TestWeatherGeolocatedQuery(t *testing.T) {
	runner := &fakeRunner{res: &weather.AggregateResult{}}
	loc := &fakeLocator{coords: weather.Coordinates{Lat: 51.5, Lon: -0.12}}
	app := newTestApp(Deps{Pipeline: runner, Locator: loc})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil))

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, runner.gotQuery.Coords)
	assert.Equal(t, 51.5, runner.gotQuery.Coords.Lat)
	_, hasAdvisory := decoded["advisory"]
	assert.False(t, hasAdvisory)
}

func TestWeatherGeolocationFallback(t *testing.T) {
	runner := &fakeRunner{res: &weather.AggregateResult{}}
	loc := &fakeLocator{err: &geo.Error{Kind: geo.KindTimeout}}
	app := newTestApp(Deps{Pipeline: runner, Locator: loc, FallbackCity: "London"})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "London", runner.gotQuery.Text)

	var advisory string
	require.NoError(t, json.Unmarshal(decoded["advisory"], &advisory))
	assert.Equal(t, "Request to get user location timed out. Showing weather for a default city (London).", advisory)
}

func TestWeatherPipelineErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"empty query", weather.ErrEmptyQuery, http.StatusBadRequest, "Please enter a city name to search."},
		{"missing credential", weather.ErrMissingCredential, http.StatusInternalServerError, "Weather provider API key is not configured."},
		{"upstream failure", &weather.FetchError{Status: 404, Message: "city not found"}, http.StatusBadGateway, "city not found"},
		{"unclassified", errors.New("boom"), http.StatusBadGateway, "failed to fetch weather data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(Deps{Pipeline: &fakeRunner{err: tc.err}})

			status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/weather?q=x", nil))

			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantMsg, errorMessage(t, decoded))
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	prefs := &fakePrefs{prefs: store.DefaultPreferences(), history: []string{"Paris", "London"}}
	app := newTestApp(Deps{Pipeline: &fakeRunner{}, Prefs: prefs})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["Paris","London"]`, string(decoded["history"]))
}

func TestGetPreferences(t *testing.T) {
	prefs := &fakePrefs{prefs: store.Preferences{Unit: weather.UnitsImperial, Theme: store.ThemeDark}}
	app := newTestApp(Deps{Pipeline: &fakeRunner{}, Prefs: prefs})

	status, decoded := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil))

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"imperial"`, string(decoded["unit"]))
	assert.JSONEq(t, `"dark"`, string(decoded["theme"]))
}

func TestPutPreferences(t *testing.T) {
	prefs := &fakePrefs{prefs: store.DefaultPreferences()}
	app := newTestApp(Deps{Pipeline: &fakeRunner{}, Prefs: prefs})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences",
		strings.NewReader(`{"unit": "imperial", "theme": "dark"}`))
	req.Header.Set("Content-Type", "application/json")

	status, _ := doJSON(t, app, req)

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, prefs.got)
	assert.Equal(t, store.Preferences{Unit: weather.UnitsImperial, Theme: store.ThemeDark}, *prefs.got)
}

func TestPutPreferencesRejectsUnknownValues(t *testing.T) {
	prefs := &fakePrefs{prefs: store.DefaultPreferences()}
	app := newTestApp(Deps{Pipeline: &fakeRunner{}, Prefs: prefs})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences",
		strings.NewReader(`{"unit": "metric", "theme": "sepia"}`))
	req.Header.Set("Content-Type", "application/json")

	status, _ := doJSON(t, app, req)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Nil(t, prefs.got)
}

func TestPutPreferencesMalformedBody(t *testing.T) {
	app := newTestApp(Deps{Pipeline: &fakeRunner{}})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	status, _ := doJSON(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
}
