package weather

import (
	"context"
)

// Forecast is the typed result of one provider call.
type Forecast struct {
	City    string
	Status  string
	Samples []ForecastSample
}

// Provider abstracts the forecast source (OpenWeatherMap 5 day / 3 hour forecast).
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, city string) (Forecast, error)
}
