package weather

import (
	"context"
	"errors"
	"log/slog"
)

// Service fetches forecasts from the provider and turns them into record sets.
type Service struct {
	provider Provider
	selector *Selector
	deriver  Deriver
	cities   []string
	logger   *slog.Logger
}

// NewService creates a new Service for the static city list.
func NewService(provider Provider, selector *Selector, deriver Deriver, cities []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if selector == nil {
		selector = NewSelector(nil, nil, MatchDayOfMonth)
	}
	return &Service{
		provider: provider,
		selector: selector,
		deriver:  NewDeriver(deriver.Cloudiness, deriver.Phenomena),
		cities:   cities,
		logger:   logger,
	}
}

// Cities returns the configured static city list.
func (s *Service) Cities() []string {
	out := make([]string, len(s.cities))
	copy(out, s.cities)
	return out
}

// Selector returns the sample selector, which also carries the service clock.
func (s *Service) Selector() *Selector { return s.selector }

// FixedTargets returns the tomorrow / day-after pair for the current instant.
func (s *Service) FixedTargets() []DayTarget {
	return FixedTargets(s.selector.Now())
}

// GetWeatherData fetches the forecast of one city and aggregates it for targets.
// Every failure is returned as a *FetchError.
func (s *Service) GetWeatherData(ctx context.Context, city string, targets []DayTarget) (CityForecastSet, error) {
	if s.provider == nil {
		return CityForecastSet{}, &FetchError{City: city, Err: ErrNoProvider}
	}

	fc, err := s.provider.FetchForecast(ctx, city)
	if err != nil {
		return CityForecastSet{}, &FetchError{City: city, Err: err}
	}

	set, err := s.deriver.AggregateCity(s.selector, city, fc.Samples, targets)
	if err != nil {
		return CityForecastSet{}, &FetchError{City: city, Err: err}
	}

	for _, label := range set.Labels {
		rec := set.Days[label]
		if rec.DayFallback || rec.NightFallback {
			s.logger.Warn("forecast sample not found, using first available",
				"city", city, "day", label, "day_fallback", rec.DayFallback, "night_fallback", rec.NightFallback)
		}
	}
	return set, nil
}

// Batch is the result of collecting several cities. Sets follow the requested order.
type Batch struct {
	Sets     []CityForecastSet
	Failures map[string]error
}

// Collect fetches every city sequentially, one request in flight at a time.
// A failing city is logged and skipped; an error is returned only when all failed.
func (s *Service) Collect(ctx context.Context, cities []string, targets []DayTarget) (*Batch, error) {
	batch := &Batch{Failures: make(map[string]error)}

	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.logger.Info("fetching forecast", "city", city)
		set, err := s.GetWeatherData(ctx, city, targets)
		if err != nil {
			s.logger.Error("forecast fetch failed", "city", city, "error", err)
			batch.Failures[city] = err
			continue
		}
		batch.Sets = append(batch.Sets, set)
	}

	if len(batch.Sets) == 0 {
		if len(cities) == 0 {
			return nil, ErrNoCitySucceeded
		}
		errs := make([]error, 0, len(batch.Failures)+1)
		errs = append(errs, ErrNoCitySucceeded)
		for _, city := range cities {
			if err, ok := batch.Failures[city]; ok {
				errs = append(errs, err)
			}
		}
		return batch, errors.Join(errs...)
	}
	return batch, nil
}

// CollectAll collects every configured city.
func (s *Service) CollectAll(ctx context.Context, targets []DayTarget) (*Batch, error) {
	return s.Collect(ctx, s.cities, targets)
}
