package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-probability/internal/weather"
)

const (
	meteomaticsTimeFormat = "2006-01-02T15:04:05Z"

	paramPrecip   = "precip_1h:mm"
	paramHumidity = "relative_humidity_2m:p"
	paramWind     = "wind_speed_10m:ms"
)

// Meteomatics marks missing or invalid values with these sentinels.
var meteomaticsInvalid = map[float64]bool{-999: true, -888: true, -777: true, -666: true}

// MeteomaticsProvider implements weather.Provider for the Meteomatics time series API.
type MeteomaticsProvider struct {
	name     string
	username string
	password string
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

func NewMeteomaticsProvider(client *http.Client, username, password string, opts ...Option) *MeteomaticsProvider {
	o := applyOptions("meteomatics", "https://api.meteomatics.com", opts)
	return &MeteomaticsProvider{
		name:     "meteomatics",
		username: username,
		password: password,
		baseURL:  o.baseURL,
		client:   client,
		circuit:  o.circuit,
	}
}

func (p *MeteomaticsProvider) Name() string {
	return p.name
}

type meteomaticsResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Dates []struct {
				Date  string   `json:"date"`
				Value *float64 `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}

func (p *MeteomaticsProvider) FetchDay(ctx context.Context, coords weather.Coordinates, date time.Time) ([]weather.HourlyObservation, error) {
	if p.username == "" || p.password == "" {
		return nil, fmt.Errorf("%w: meteomatics credentials are not configured", weather.ErrInvalidRequest)
	}

	start, end := dayBounds(date)
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		// /<start>--<end>:PT1H/<params>/<lat>,<lon>/json
		u := fmt.Sprintf("%s/%s--%s:PT1H/%s,%s,%s/%f,%f/json",
			p.baseURL,
			start.Format(meteomaticsTimeFormat), end.Format(meteomaticsTimeFormat),
			paramPrecip, paramHumidity, paramWind,
			coords.Latitude, coords.Longitude,
		)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(p.username, p.password)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}

	var payload meteomaticsResponse
	if err := decodeJSON(resp, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "" && payload.Status != "OK" {
		return nil, fmt.Errorf("%w: meteomatics status %q", weather.ErrProviderFailure, payload.Status)
	}

	byTime := make(map[time.Time]*weather.HourlyObservation)
	for _, series := range payload.Data {
		for _, c := range series.Coordinates {
			for _, d := range c.Dates {
				ts, err := time.Parse(time.RFC3339, d.Date)
				if err != nil {
					continue
				}
				ts = ts.UTC().Truncate(time.Hour)

				obs, ok := byTime[ts]
				if !ok {
					obs = &weather.HourlyObservation{Timestamp: ts}
					byTime[ts] = obs
				}

				value := d.Value
				if value != nil && meteomaticsInvalid[*value] {
					value = nil
				}
				switch series.Parameter {
				case paramPrecip:
					obs.PrecipitationMm = value
				case paramHumidity:
					obs.RelativeHumidityPct = value
				case paramWind:
					obs.WindSpeedMs = value
				}
			}
		}
	}

	out := make([]weather.HourlyObservation, 0, len(byTime))
	for _, obs := range byTime {
		out = append(out, *obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
