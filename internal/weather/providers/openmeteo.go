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

const openMeteoTimeFormat = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Provider interface for the Open-Meteo historical archive.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, opts ...Option) *OpenMeteoProvider {
	o := applyOptions("openmeteo", "https://archive-api.open-meteo.com/v1/archive", opts)
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: o.baseURL,
		client:  client,
		circuit: o.circuit,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Hourly struct {
		Time             []string   `json:"time"`
		Precipitation    []*float64 `json:"precipitation"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
		WindSpeed        []*float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) FetchDay(ctx context.Context, coords weather.Coordinates, date time.Time) ([]weather.HourlyObservation, error) {
	day := date.UTC().Format(time.DateOnly)

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", coords.Longitude))
		values.Set("start_date", day)
		values.Set("end_date", day)
		values.Set("hourly", "precipitation,relative_humidity_2m,wind_speed_10m")
		values.Set("wind_speed_unit", "ms")
		values.Set("timezone", "GMT")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload openMeteoResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.HourlyObservation, 0, len(payload.Hourly.Time))
	for i, raw := range payload.Hourly.Time {
		ts, err := time.ParseInLocation(openMeteoTimeFormat, raw, time.UTC)
		if err != nil {
			continue
		}
		out = append(out, weather.HourlyObservation{
			Timestamp:           ts,
			PrecipitationMm:     at(payload.Hourly.Precipitation, i),
			RelativeHumidityPct: at(payload.Hourly.RelativeHumidity, i),
			WindSpeedMs:         at(payload.Hourly.WindSpeed, i),
		})
	}
	return out, nil
}

// at returns nil when the series is shorter than the time axis.
func at(series []*float64, i int) *float64 {
	if i < len(series) {
		return series[i]
	}
	return nil
}
