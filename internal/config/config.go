package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	GeminiAPIKey      string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// GeoTimeout bounds the IP-geolocation lookup before falling back to
	// FallbackCity.
	GeoTimeout   time.Duration
	FallbackCity string

	// DBPath is the sqlite file holding preferences and search history.
	DBPath string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	httpTimeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = httpTimeout

	geoTimeoutStr := getenvDefault("GEO_TIMEOUT", "5s")
	geoTimeout, err := time.ParseDuration(geoTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid GEO_TIMEOUT: %w", err)
	}
	cfg.GeoTimeout = geoTimeout

	cfg.FallbackCity = getenvDefault("FALLBACK_CITY", "London")
	cfg.DBPath = getenvDefault("DB_PATH", "weather-insight.db")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
