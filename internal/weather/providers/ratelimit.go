package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/meteo-template/internal/weather"
)

// RateLimitedProvider wraps a weather.Provider with a token bucket limiter.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
	name     string
}

// NewRateLimitedProvider creates a new rate limited provider.
// rps is the maximum requests per second allowed (can be fractional).
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// FetchForecast waits for limiter permission, then forwards to the wrapped provider.
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, city string) (weather.Forecast, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Forecast{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.FetchForecast(ctx, city)
}

// Name returns the provider name.
func (r *RateLimitedProvider) Name() string {
	return r.name
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
