package geocode

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-probability/internal/common"
	"github.com/i474232898/weather-probability/internal/weather"
)

// GoogleResolver geocodes free text with the Google Geocoding API.
type GoogleResolver struct {
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleResolver configures the geocoder package with apiKey. The key is
// package-global in the underlying library, so only one key per process is supported.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	geocoder.ApiKey = apiKey
	return &GoogleResolver{geocode: geocoder.Geocoding}
}

type geocodeResult struct {
	loc geocoder.Location
	err error
}

func (g *GoogleResolver) Resolve(ctx context.Context, location string) (weather.Coordinates, error) {
	// The library has no context support; the lookup keeps running after a
	// cancellation but its result is dropped into the buffered channel.
	ch := make(chan geocodeResult, 1)
	go func() {
		loc, err := g.geocode(geocoder.Address{City: location})
		ch <- geocodeResult{loc: loc, err: err}
	}()

	var res geocodeResult
	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case res = <-ch:
	}

	if res.err != nil {
		if common.HasAny(res.err.Error(), "zero_results", "no results", "not found") {
			return weather.Coordinates{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, location)
		}
		return weather.Coordinates{}, fmt.Errorf("google geocoding %q: %w", location, res.err)
	}
	if res.loc.Latitude == 0 && res.loc.Longitude == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, location)
	}

	return weather.Coordinates{Latitude: res.loc.Latitude, Longitude: res.loc.Longitude}, nil
}
