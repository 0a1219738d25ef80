package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLocationNotFound is returned when the resolver cannot geocode a location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrInvalidInput is returned for malformed dates, degenerate coordinates or unsupported ranges.
	ErrInvalidInput = errors.New("invalid input")

	// Provider failure classes. Providers wrap these so the fetcher can classify.
	ErrRateLimited     = errors.New("rate limited")
	ErrInvalidRequest  = errors.New("invalid provider request")
	ErrProviderFailure = errors.New("provider failure")
)

// Provider abstracts a historical weather source (Meteomatics, Open-Meteo, ...).
// FetchDay returns the hourly observations of one UTC day.
type Provider interface {
	Name() string
	FetchDay(ctx context.Context, coords Coordinates, date time.Time) ([]HourlyObservation, error)
}

// Resolver turns free-text locations into coordinates.
// Implementations return an error wrapping ErrLocationNotFound when nothing matches.
type Resolver interface {
	Resolve(ctx context.Context, location string) (Coordinates, error)
}

// ChartRenderer is an optional collaborator producing a base64 encoded chart.
type ChartRenderer interface {
	Render(location, date string, hourly []HourlyProbability) (string, error)
}

// Place is one geocoding match returned by a location search.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Searcher is implemented by resolvers that can list several matches for a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}
