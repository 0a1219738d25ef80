package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-probability/internal/weather"
)

var (
	errNoHTTPClient = errors.New("http client not configured")
	errUnexpected   = errors.New("unexpected status code")
)

// Option customizes a provider.
type Option func(*options)

type options struct {
	baseURL string
	circuit *gobreaker.CircuitBreaker
}

// WithBaseURL overrides the provider endpoint (used for tests and proxies).
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCircuitBreaker replaces the default circuit breaker.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(o *options) {
		o.circuit = cb
	}
}

func applyOptions(name, defaultURL string, opts []Option) options {
	o := options{baseURL: defaultURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.circuit == nil {
		o.circuit = newCircuitBreaker(name)
	}
	return o
}

// newCircuitBreaker trips after repeated upstream failures. Invalid requests
// and caller cancellations do not count against the provider.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, weather.ErrInvalidRequest) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// doRequestWithResilience executes one HTTP attempt through the circuit
// breaker and maps the response status onto the weather error classes. On
// success the caller owns resp.Body; on error the body is already closed.
// Retries are the caller's concern (see weather.Fetcher).
func doRequestWithResilience(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrInvalidRequest, err)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if statusErr := checkStatus(resp); statusErr != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
			return nil, statusErr
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", weather.ErrCircuitOpen, cb.Name(), err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", weather.ErrProviderFailure)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", weather.ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", weather.ErrProviderFailure, code)
	case code >= 400:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", weather.ErrInvalidRequest, code, strings.TrimSpace(string(snippet)))
	default:
		return fmt.Errorf("%w: %w: %d", weather.ErrProviderFailure, errUnexpected, code)
	}
}

// decodeJSON decodes and closes the response body.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decoding response: %v", weather.ErrProviderFailure, err)
	}
	return nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(23 * time.Hour)
}
