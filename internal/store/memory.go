package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-probability/internal/weather"
)

var (
	// ErrNotFound is returned when no fresh coordinates are cached for a location.
	ErrNotFound = errors.New("no cached coordinates for location")
)

// entry holds resolved coordinates and when they were stored.
type entry struct {
	Coordinates weather.Coordinates
	StoredAt    time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of geocoded locations.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized location text
	data map[string]entry

	// retention configuration
	maxEntries int           // max number of cached locations
	maxAge     time.Duration // optional max age for entries

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Key normalizes location text for lookups.
func Key(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

// Save stores coordinates for a location and enforces retention.
func (s *MemoryStore) Save(location string, coords weather.Coordinates) {
	key := Key(location)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{Coordinates: coords, StoredAt: s.now()}

	// Enforce retention by count: drop the oldest entries.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.StoredAt.Before(oldest) {
				oldestKey, oldest = k, e.StoredAt
			}
		}
		delete(s.data, oldestKey)
	}
}

// Get returns the cached coordinates for a location if they are still fresh.
func (s *MemoryStore) Get(location string) (weather.Coordinates, error) {
	key := Key(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.expired(e) {
		return weather.Coordinates{}, ErrNotFound
	}
	return e.Coordinates, nil
}

// Prune removes expired entries and returns how many were dropped.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.data {
		if s.expired(e) {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries, fresh or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.now().Sub(e.StoredAt) > s.maxAge
}
