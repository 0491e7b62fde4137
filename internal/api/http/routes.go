package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-insight/internal/geo"
	"github.com/i474232898/weather-insight/internal/store"
	"github.com/i474232898/weather-insight/internal/weather"
)

var validate = validator.New()

// Runner is the pipeline surface the HTTP layer needs.
type Runner interface {
	Run(ctx context.Context, q weather.Query, units weather.Units) (*weather.AggregateResult, error)
}

// PreferenceStore is the persisted-state surface the HTTP layer needs.
type PreferenceStore interface {
	Preferences() store.Preferences
	SetPreferences(p store.Preferences) error
	History() []string
}

// Deps bundles the collaborators the routes dispatch to.
type Deps struct {
	Pipeline     Runner
	Locator      geo.Locator
	Prefs        PreferenceStore
	FallbackCity string
	Log          *logrus.Logger
}

// weatherResponse wraps a pipeline result with the optional geolocation
// advisory produced while choosing the query.
type weatherResponse struct {
	Advisory string                   `json:"advisory,omitempty"`
	Result   *weather.AggregateResult `json:"result"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		units := weather.Units(c.Query("units", string(deps.Prefs.Preferences().Unit)))
		if err := validate.Var(string(units), "oneof=metric imperial"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "units must be metric or imperial")
		}

		q, advisory, err := resolveQuery(c, deps)
		if err != nil {
			return err
		}

		result, err := deps.Pipeline.Run(c.Context(), q, units)
		if err != nil {
			return mapPipelineError(err)
		}

		return c.JSON(weatherResponse{Advisory: advisory, Result: result})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"history": deps.Prefs.History()})
	})

	v1.Get("/preferences", func(c *fiber.Ctx) error {
		return c.JSON(deps.Prefs.Preferences())
	})

	v1.Put("/preferences", func(c *fiber.Ctx) error {
		var req preferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		prefs := store.Preferences{Unit: weather.Units(req.Unit), Theme: store.Theme(req.Theme)}
		if err := deps.Prefs.SetPreferences(prefs); err != nil {
			if errors.Is(err, store.ErrInvalidPreference) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save preferences")
		}
		return c.JSON(prefs)
	})
}

// resolveQuery picks the location query for a request: explicit coordinates,
// then a text search, then IP geolocation of the caller with a fallback city
// (and advisory) when geolocation fails.
func resolveQuery(c *fiber.Ctx, deps Deps) (weather.Query, string, error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr != "" || lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			return weather.Query{}, "", fiber.NewError(fiber.StatusBadRequest, "lat and lon must both be valid numbers")
		}
		return weather.CoordsQuery(lat, lon), "", nil
	}

	if q := c.Query("q"); q != "" {
		return weather.TextQuery(q), "", nil
	}

	if deps.Locator == nil {
		return weather.Query{}, "", nil
	}

	coords, err := deps.Locator.Locate(c.Context(), c.IP())
	if err != nil {
		advisory := geo.Advisory(err, deps.FallbackCity)
		if deps.Log != nil {
			deps.Log.WithError(err).Warnf("geolocation failed; falling back to %s", deps.FallbackCity)
		}
		return weather.TextQuery(deps.FallbackCity), advisory, nil
	}
	return weather.CoordsQuery(coords.Lat, coords.Lon), "", nil
}

func mapPipelineError(err error) error {
	var fetchErr *weather.FetchError
	switch {
	case errors.Is(err, weather.ErrEmptyQuery):
		return fiber.NewError(fiber.StatusBadRequest, "Please enter a city name to search.")
	case errors.Is(err, weather.ErrMissingCredential):
		return fiber.NewError(fiber.StatusInternalServerError, "Weather provider API key is not configured.")
	case errors.As(err, &fetchErr):
		return fiber.NewError(fiber.StatusBadGateway, fetchErr.Message)
	default:
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
}

// preferencesRequest is the PUT /preferences body.
type preferencesRequest struct {
	Unit  string `json:"unit" validate:"required,oneof=metric imperial"`
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}
