package geocode

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-probability/internal/store"
	"github.com/i474232898/weather-probability/internal/weather"
)

// ParseCoordinates accepts location text of the form "lat,lon".
func ParseCoordinates(text string) (weather.Coordinates, bool) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return weather.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return weather.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return weather.Coordinates{}, false
	}
	return weather.Coordinates{Latitude: lat, Longitude: lon}, true
}

// CachingResolver short-circuits literal coordinates, serves cached lookups
// and otherwise delegates to the upstream resolver.
type CachingResolver struct {
	next   weather.Resolver
	cache  *store.MemoryStore
	logger *zap.SugaredLogger
}

func NewCachingResolver(next weather.Resolver, cache *store.MemoryStore, logger *zap.SugaredLogger) *CachingResolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CachingResolver{next: next, cache: cache, logger: logger}
}

func (r *CachingResolver) Resolve(ctx context.Context, location string) (weather.Coordinates, error) {
	if coords, ok := ParseCoordinates(location); ok {
		return coords, nil
	}

	coords, err := r.cache.Get(location)
	if err == nil {
		return coords, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return weather.Coordinates{}, err
	}

	coords, err = r.next.Resolve(ctx, location)
	if err != nil {
		return weather.Coordinates{}, err
	}
	r.cache.Save(location, coords)
	return coords, nil
}

// Search lists matches for query. Literal coordinates yield a single place;
// upstream resolvers without search support fall back to Resolve. The best
// match is cached for later Resolve calls.
func (r *CachingResolver) Search(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	if coords, ok := ParseCoordinates(query); ok {
		return []weather.Place{{Name: query, Latitude: coords.Latitude, Longitude: coords.Longitude}}, nil
	}

	searcher, ok := r.next.(weather.Searcher)
	if !ok {
		coords, err := r.Resolve(ctx, query)
		if err != nil {
			return nil, err
		}
		return []weather.Place{{Name: query, Latitude: coords.Latitude, Longitude: coords.Longitude}}, nil
	}

	places, err := searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(places) > 0 {
		r.cache.Save(query, weather.Coordinates{Latitude: places[0].Latitude, Longitude: places[0].Longitude})
	}
	return places, nil
}

// Warm resolves locations into the cache, logging failures. It returns the
// number of locations that resolved.
func (r *CachingResolver) Warm(ctx context.Context, locations []string) int {
	resolved := 0
	for _, loc := range locations {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.Resolve(ctx, loc); err != nil {
			r.logger.Warnw("cache warm-up failed", "location", loc, "error", err)
			continue
		}
		resolved++
	}
	return resolved
}

// Prune drops expired cache entries.
func (r *CachingResolver) Prune() int {
	return r.cache.Prune()
}
