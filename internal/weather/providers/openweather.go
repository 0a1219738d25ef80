package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-probability/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for the OpenWeatherMap hourly history API.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	o := applyOptions("openweather", "https://history.openweathermap.org/data/2.5/history/city", opts)
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		client:  client,
		circuit: o.circuit,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherHistory struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Rain *struct {
			OneH *float64 `json:"1h"`
		} `json:"rain"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) FetchDay(ctx context.Context, coords weather.Coordinates, date time.Time) ([]weather.HourlyObservation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrInvalidRequest)
	}

	start, end := dayBounds(date)
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("type", "hour")
		values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
		values.Set("start", strconv.FormatInt(start.Unix(), 10))
		values.Set("end", strconv.FormatInt(end.Unix(), 10))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload openWeatherHistory
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.HourlyObservation, 0, len(payload.List))
	for _, item := range payload.List {
		obs := weather.HourlyObservation{
			Timestamp:           time.Unix(item.Dt, 0).UTC(),
			RelativeHumidityPct: item.Main.Humidity,
			WindSpeedMs:         item.Wind.Speed,
		}
		// OpenWeather omits the rain block for dry hours, so a missing block is
		// a reported zero. A rain block without a 1h value stays unknown.
		switch {
		case item.Rain == nil:
			zero := 0.0
			obs.PrecipitationMm = &zero
		default:
			obs.PrecipitationMm = item.Rain.OneH
		}
		out = append(out, obs)
	}
	return out, nil
}
