package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrCircuitOpen is wrapped by providers when their circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// ErrEmptyPayload marks a provider reply that carried no observations.
var ErrEmptyPayload = errors.New("empty payload")

// FetcherConfig controls per-call timeout and retry behaviour.
type FetcherConfig struct {
	// Timeout bounds one FetchDay call including all retries.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialInterval and MaxInterval shape the exponential backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultFetcherConfig returns the defaults used by the service.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Fetcher retrieves one day of hourly observations and turns every failure into
// a classified FetchOutcome. It never returns an error and never panics.
type Fetcher struct {
	provider Provider
	cfg      FetcherConfig
	logger   *zap.SugaredLogger
}

// NewFetcher creates a Fetcher around provider. Zero config fields take defaults.
func NewFetcher(provider Provider, cfg FetcherConfig, logger *zap.SugaredLogger) *Fetcher {
	def := DefaultFetcherConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fetcher{provider: provider, cfg: cfg, logger: logger}
}

// Fetch retrieves the observations for point. Transient failures (network
// errors, timeouts, rate limiting, 5xx) are retried with exponential backoff;
// invalid requests and open circuits fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, coords Coordinates, point SamplePoint) (out FetchOutcome) {
	out.Point = point

	defer func() {
		if r := recover(); r != nil {
			out.Observations = nil
			out.Failure = &FetchFailure{Reason: ReasonUnknown, Err: fmt.Errorf("provider %s panicked: %v", f.provider.Name(), r)}
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.cfg.InitialInterval
	bo.MaxInterval = f.cfg.MaxInterval
	bo.MaxElapsedTime = 0 // bounded by MaxRetries and callCtx

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.cfg.MaxRetries)), callCtx)

	var observations []HourlyObservation
	attempts := 0
	operation := func() error {
		attempts++
		obs, err := f.provider.FetchDay(callCtx, coords, point.Date)
		if err != nil {
			if !isTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		observations = obs
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		reason := classify(ctx, callCtx, err)
		f.logger.Warnw("historical fetch failed",
			"provider", f.provider.Name(),
			"date", point.Date.Format(time.DateOnly),
			"attempts", attempts,
			"reason", reason,
			"error", err,
		)
		out.Failure = &FetchFailure{Reason: reason, Err: err}
		return out
	}

	if len(observations) == 0 {
		// a day without data is not a usable sample
		f.logger.Warnw("historical fetch returned no observations",
			"provider", f.provider.Name(),
			"date", point.Date.Format(time.DateOnly),
		)
		out.Failure = &FetchFailure{
			Reason: ReasonProviderError,
			Err:    fmt.Errorf("%s: %w", f.provider.Name(), ErrEmptyPayload),
		}
		return out
	}

	out.Observations = normalize(observations)
	return out
}

func isTransient(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrCircuitOpen):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func classify(parent, call context.Context, err error) FailureReason {
	var netErr net.Error
	switch {
	case parent.Err() != nil:
		// the caller went away; nothing about the provider is known
		return ReasonUnknown
	case call.Err() != nil, errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	case errors.Is(err, ErrRateLimited):
		return ReasonRateLimited
	case errors.Is(err, ErrInvalidRequest):
		return ReasonInvalidRequest
	case errors.Is(err, ErrProviderFailure), errors.Is(err, ErrCircuitOpen):
		return ReasonProviderError
	default:
		return ReasonUnknown
	}
}

func normalize(in []HourlyObservation) []HourlyObservation {
	out := make([]HourlyObservation, len(in))
	for i, o := range in {
		o.Timestamp = o.Timestamp.UTC().Truncate(time.Hour)
		out[i] = o
	}
	return out
}
