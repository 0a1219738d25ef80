package weather

import (
	"context"
	"sync/atomic"
	"time"
)

func ptr(v float64) *float64 { return &v }

// funcProvider adapts a function to the Provider interface and counts calls.
type funcProvider struct {
	name  string
	fetch func(ctx context.Context, coords Coordinates, date time.Time) ([]HourlyObservation, error)
	calls atomic.Int32
}

func (p *funcProvider) Name() string {
	if p.name == "" {
		return "fake"
	}
	return p.name
}

func (p *funcProvider) FetchDay(ctx context.Context, coords Coordinates, date time.Time) ([]HourlyObservation, error) {
	p.calls.Add(1)
	return p.fetch(ctx, coords, date)
}

type staticResolver struct {
	coords Coordinates
	err    error
}

func (r staticResolver) Resolve(context.Context, string) (Coordinates, error) {
	return r.coords, r.err
}

func obsAt(date time.Time, hour int, precip, humidity, wind *float64) HourlyObservation {
	return HourlyObservation{
		Timestamp:           time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC),
		PrecipitationMm:     precip,
		RelativeHumidityPct: humidity,
		WindSpeedMs:         wind,
	}
}

// fastFetcherConfig keeps retry tests quick.
func fastFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}
