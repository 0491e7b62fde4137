package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/weather-insight/internal/api/http"
	"github.com/i474232898/weather-insight/internal/config"
	"github.com/i474232898/weather-insight/internal/geo"
	"github.com/i474232898/weather-insight/internal/store"
	"github.com/i474232898/weather-insight/internal/weather"
	"github.com/i474232898/weather-insight/internal/weather/providers"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Persistent preferences and search history.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	source := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey)
	narrator := providers.NewGeminiClient(httpClient, cfg.GeminiAPIKey)
	pipeline := weather.NewPipeline(source, narrator, st, log)
	locator := geo.NewIPLocator(httpClient, cfg.GeoTimeout)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-insight",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-insight",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Pipeline:     pipeline,
		Locator:      locator,
		Prefs:        st,
		FallbackCity: cfg.FallbackCity,
		Log:          log,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
