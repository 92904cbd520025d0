package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/meteo-template/internal/weather"
)

var (
	// ErrNotFound is returned when no fresh forecast is cached for a city.
	ErrNotFound = errors.New("no cached forecast for city")
)

type entry struct {
	forecast  weather.Forecast
	fetchedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of provider forecasts.
// Entries expire after maxAge; it never keeps more than the latest response per city.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city name
	data map[string]entry

	maxEntries int           // max number of cached cities (0 = unlimited)
	maxAge     time.Duration // entries older than this are treated as missing
	clock      weather.Clock
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration, clock weather.Clock) *MemoryStore {
	if clock == nil {
		clock = weather.RealClock{}
	}
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		clock:      clock,
	}
}

func key(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Save stores the latest forecast of a city and enforces retention.
func (s *MemoryStore) Save(city string, fc weather.Forecast) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key(city)] = entry{forecast: fc, fetchedAt: now}
	s.evictLocked(now)
}

// Get returns the cached forecast of a city if it is younger than maxAge.
func (s *MemoryStore) Get(city string) (weather.Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key(city)]
	if !ok || s.expired(e, s.clock.Now()) {
		return weather.Forecast{}, ErrNotFound
	}
	return e.forecast, nil
}

// Len returns the number of cached cities, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(e.fetchedAt) > s.maxAge
}

func (s *MemoryStore) evictLocked(now time.Time) {
	for k, e := range s.data {
		if s.expired(e, now) {
			delete(s.data, k)
		}
	}

	// Enforce retention by count, dropping the oldest entries first.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.fetchedAt.Before(oldest) {
				oldestKey, oldest = k, e.fetchedAt
			}
		}
		delete(s.data, oldestKey)
	}
}

// CachedProvider serves forecasts from the store and falls through to the provider.
type CachedProvider struct {
	provider weather.Provider
	store    *MemoryStore
}

// NewCachedProvider wraps provider with store.
func NewCachedProvider(provider weather.Provider, store *MemoryStore) *CachedProvider {
	return &CachedProvider{provider: provider, store: store}
}

func (c *CachedProvider) Name() string {
	return c.provider.Name() + " [Cached]"
}

// FetchForecast returns a fresh cached response or fetches and caches a new one.
// Failed fetches are never cached.
func (c *CachedProvider) FetchForecast(ctx context.Context, city string) (weather.Forecast, error) {
	if fc, err := c.store.Get(city); err == nil {
		return fc, nil
	}

	fc, err := c.provider.FetchForecast(ctx, city)
	if err != nil {
		return weather.Forecast{}, err
	}
	c.store.Save(city, fc)
	return fc, nil
}

var _ weather.Provider = (*CachedProvider)(nil)
