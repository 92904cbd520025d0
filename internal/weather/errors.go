package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSamples is returned when a forecast response carries no data points.
	ErrNoSamples = errors.New("forecast contains no samples")
	// ErrCalmWind is returned when a sample has no wind direction to classify.
	ErrCalmWind = errors.New("wind direction is undefined")
	// ErrInvalidTarget is returned for day targets that are not in the future.
	ErrInvalidTarget = errors.New("target day must be at least one day ahead")
	// ErrNoCitySucceeded is returned when every city of a batch failed.
	ErrNoCitySucceeded = errors.New("no weather data could be fetched for any city")
	// ErrNoProvider is returned when the service has no provider configured.
	ErrNoProvider = errors.New("no weather provider configured")
)

// ProviderError reports a non-success status or malformed response from the weather source.
type ProviderError struct {
	Status  string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status == "" {
		return "provider error: " + e.Message
	}
	return fmt.Sprintf("provider error (status %s): %s", e.Status, e.Message)
}

// FetchError wraps any failure that prevented a city's record set from being built.
type FetchError struct {
	City string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to get weather data for city %s: %v", e.City, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
