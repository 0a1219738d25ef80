package providers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/weather-probability/internal/weather"
)

// Supported provider names.
const (
	Meteomatics = "meteomatics"
	OpenMeteo   = "openmeteo"
	WeatherAPI  = "weatherapi"
	OpenWeather = "openweather"
)

// Credentials carries the secrets of every supported provider; only the
// selected provider's fields are used.
type Credentials struct {
	MeteomaticsUsername string
	MeteomaticsPassword string
	WeatherAPIKey       string
	OpenWeatherAPIKey   string
}

// New builds the provider registered under name.
func New(name string, client *http.Client, creds Credentials, opts ...Option) (weather.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Meteomatics:
		return NewMeteomaticsProvider(client, creds.MeteomaticsUsername, creds.MeteomaticsPassword, opts...), nil
	case OpenMeteo:
		return NewOpenMeteoProvider(client, opts...), nil
	case WeatherAPI:
		return NewWeatherAPIProvider(client, creds.WeatherAPIKey, opts...), nil
	case OpenWeather:
		return NewOpenWeatherProvider(client, creds.OpenWeatherAPIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
