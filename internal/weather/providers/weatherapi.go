package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-probability/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for the WeatherAPI.com history endpoint.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	o := applyOptions("weatherapi", "https://api.weatherapi.com/v1/history.json", opts)
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		client:  client,
		circuit: o.circuit,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIHistory struct {
	Forecast struct {
		ForecastDay []struct {
			Hour []struct {
				TimeEpoch int64    `json:"time_epoch"`
				PrecipMm  *float64 `json:"precip_mm"`
				Humidity  *float64 `json:"humidity"`
				WindKph   *float64 `json:"wind_kph"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) FetchDay(ctx context.Context, coords weather.Coordinates, date time.Time) ([]weather.HourlyObservation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrInvalidRequest)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", coords.Latitude, coords.Longitude))
		values.Set("dt", date.UTC().Format(time.DateOnly))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload weatherAPIHistory
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	// dt selects a day in the location's local time; keep only the hours
	// that fall inside the requested UTC day.
	start, end := dayBounds(date)

	var out []weather.HourlyObservation
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			ts := time.Unix(h.TimeEpoch, 0).UTC()
			if ts.Before(start) || ts.After(end) {
				continue
			}
			obs := weather.HourlyObservation{
				Timestamp:           ts,
				PrecipitationMm:     h.PrecipMm,
				RelativeHumidityPct: h.Humidity,
			}
			if h.WindKph != nil {
				// kph to m/s
				ms := *h.WindKph / 3.6
				obs.WindSpeedMs = &ms
			}
			out = append(out, obs)
		}
	}
	return out, nil
}
