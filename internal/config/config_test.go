package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-probability/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", "openmeteo")
	t.Setenv("WARM_LOCATIONS", "Paris, France; ;Tokyo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nominatim", cfg.Geocoder)
	assert.Equal(t, weather.DefaultWindow, cfg.Window())
	assert.Equal(t, 8, cfg.MaxConcurrentFetches)
	assert.Equal(t, 24*time.Hour, cfg.GeocodeCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"Paris, France", "Tokyo"}, cfg.WarmLocations)

	fc := cfg.FetcherConfig()
	assert.Equal(t, 30*time.Second, fc.Timeout)
	assert.Equal(t, 3, fc.MaxRetries)
	assert.Equal(t, weather.DefaultFetcherConfig().InitialInterval, fc.InitialInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", "weatherapi")
	t.Setenv("WEATHERAPI_API_KEY", "abc")
	t.Setenv("HISTORICAL_YEARS", "10")
	t.Setenv("DAYS_RANGE", "0")
	t.Setenv("FETCH_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, weather.Window{YearsBack: 10, DayRadius: 0}, cfg.Window())
	assert.Equal(t, 5*time.Second, cfg.FetcherConfig().Timeout)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"meteomatics without credentials": {"WEATHER_PROVIDER": "meteomatics", "METEOMATICS_USERNAME": "", "METEOMATICS_PASSWORD": ""},
		"openweather without key":         {"WEATHER_PROVIDER": "openweather", "OPENWEATHER_API_KEY": ""},
		"google without key":              {"WEATHER_PROVIDER": "openmeteo", "GEOCODER": "google", "GOOGLE_GEOCODING_API_KEY": ""},
		"unknown provider":                {"WEATHER_PROVIDER": "darksky"},
		"bad log level":                   {"WEATHER_PROVIDER": "openmeteo", "LOG_LEVEL": "loud"},
		"zero years":                      {"WEATHER_PROVIDER": "openmeteo", "HISTORICAL_YEARS": "0"},
		"negative radius":                 {"WEATHER_PROVIDER": "openmeteo", "DAYS_RANGE": "-1"},
		"non-positive timeout":            {"WEATHER_PROVIDER": "openmeteo", "REQUEST_TIMEOUT": "0s"},
		"malformed duration":              {"WEATHER_PROVIDER": "openmeteo", "HTTP_TIMEOUT": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
