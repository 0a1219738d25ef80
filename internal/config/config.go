package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/weather-probability/internal/common"
	"github.com/i474232898/weather-probability/internal/weather"
)

type AppConfig struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"production" validate:"oneof=development production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Historical provider selection and credentials.
	Provider            string `envconfig:"WEATHER_PROVIDER" default:"meteomatics" validate:"oneof=meteomatics openmeteo weatherapi openweather"`
	MeteomaticsUsername string `envconfig:"METEOMATICS_USERNAME"`
	MeteomaticsPassword string `envconfig:"METEOMATICS_PASSWORD"`
	WeatherAPIKey       string `envconfig:"WEATHERAPI_API_KEY"`
	OpenWeatherAPIKey   string `envconfig:"OPENWEATHER_API_KEY"`

	// Geocoding.
	Geocoder         string        `envconfig:"GEOCODER" default:"nominatim" validate:"oneof=nominatim google"`
	GoogleAPIKey     string        `envconfig:"GOOGLE_GEOCODING_API_KEY"`
	NominatimURL     string        `envconfig:"NOMINATIM_URL"`
	GeocodeCacheSize int           `envconfig:"GEOCODE_CACHE_SIZE" default:"1000" validate:"gte=0"`
	GeocodeCacheTTL  time.Duration `envconfig:"GEOCODE_CACHE_TTL" default:"24h"`

	// History window.
	YearsBack int `envconfig:"HISTORICAL_YEARS" default:"5" validate:"gte=1"`
	DayRadius int `envconfig:"DAYS_RANGE" default:"2" validate:"gte=0"`

	// Outbound fetching.
	MaxConcurrentFetches int           `envconfig:"MAX_CONCURRENT_FETCHES" default:"8" validate:"gte=1"`
	HTTPTimeout          time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	FetchTimeout         time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	FetchMaxRetries      int           `envconfig:"FETCH_MAX_RETRIES" default:"3" validate:"gte=0"`
	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	// Locations pre-resolved into the geocode cache, separated by ';'.
	WarmLocations []string      `ignored:"true"`
	WarmInterval  time.Duration `envconfig:"WARM_INTERVAL" default:"15m"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}
	cfg.WarmLocations = loadWarmLocations()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the selected provider and
// geocoder have their credentials.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	switch c.Provider {
	case "meteomatics":
		if c.MeteomaticsUsername == "" || c.MeteomaticsPassword == "" {
			return fmt.Errorf("METEOMATICS_USERNAME and METEOMATICS_PASSWORD are required for provider %q", c.Provider)
		}
	case "weatherapi":
		if c.WeatherAPIKey == "" {
			return fmt.Errorf("WEATHERAPI_API_KEY is required for provider %q", c.Provider)
		}
	case "openweather":
		if c.OpenWeatherAPIKey == "" {
			return fmt.Errorf("OPENWEATHER_API_KEY is required for provider %q", c.Provider)
		}
	}

	if c.Geocoder == "google" && c.GoogleAPIKey == "" {
		return fmt.Errorf("GOOGLE_GEOCODING_API_KEY is required for geocoder %q", c.Geocoder)
	}

	for name, d := range map[string]time.Duration{
		"HTTP_TIMEOUT":    c.HTTPTimeout,
		"FETCH_TIMEOUT":   c.FetchTimeout,
		"REQUEST_TIMEOUT": c.RequestTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", name)
		}
	}
	return nil
}

// Window returns the configured history window.
func (c *AppConfig) Window() weather.Window {
	return weather.Window{YearsBack: c.YearsBack, DayRadius: c.DayRadius}
}

// FetcherConfig returns the per-call fetch settings.
func (c *AppConfig) FetcherConfig() weather.FetcherConfig {
	cfg := weather.DefaultFetcherConfig()
	cfg.Timeout = c.FetchTimeout
	cfg.MaxRetries = c.FetchMaxRetries
	return cfg
}

// loadWarmLocations reads WARM_LOCATIONS. Entries are ';' separated because
// location names commonly contain commas ("Paris, France").
func loadWarmLocations() []string {
	return common.SplitList(os.Getenv("WARM_LOCATIONS"), ";")
}
