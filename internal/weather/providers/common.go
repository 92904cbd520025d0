package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxBackoff caps the wait between two attempts.
const maxBackoff = 5 * time.Second

// Backoff retries rate-limited and 5xx responses with a doubling delay.
// Retries of zero means a single attempt.
type Backoff struct {
	Retries int
	Base    time.Duration
}

func (b Backoff) valid() bool {
	return b.Retries == 0 || (b.Retries > 0 && b.Base > 0)
}

func (b Backoff) delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// fetcher sends forecast requests for one provider. All requests share one breaker.
type fetcher struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	backoff Backoff
}

func newFetcher(name string, client *http.Client, backoff Backoff) *fetcher {
	return &fetcher{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
		backoff: backoff,
	}
}

// checkStatus turns the statuses worth retrying into errors and closes their body.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return errRateLimited
	case resp.StatusCode >= 500:
		resp.Body.Close()
		return fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	}
	return nil
}

// do sends the request built by build through the breaker, backing off between
// retryable failures. Any other status is handed back; the caller closes the body.
func (f *fetcher) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if f.client == nil {
		return nil, errNoHTTPClient
	}
	if !f.backoff.valid() {
		return nil, errInvalidConfig
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		result, err := f.breaker.Execute(func() (interface{}, error) {
			resp, err := f.client.Do(req)
			if err != nil {
				return nil, err
			}
			if err := checkStatus(resp); err != nil {
				return nil, err
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if attempt >= f.backoff.Retries {
			return nil, err
		}

		timer := time.NewTimer(f.backoff.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
