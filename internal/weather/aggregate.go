package weather

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrentFetches bounds parallel provider calls when unset.
const DefaultMaxConcurrentFetches = 8

// Collection is the merged result of fetching every planned sample point.
type Collection struct {
	// Outcomes has exactly one entry per planned point, in plan order.
	Outcomes []FetchOutcome
	// Observations is the union of all successful payloads.
	Observations []HourlyObservation
	Successes    int
	Failures     int
}

// Planned returns the number of planned sample points.
func (c Collection) Planned() int {
	return len(c.Outcomes)
}

// Status derives the data status from the success/failure counts.
func (c Collection) Status() DataStatus {
	switch {
	case c.Successes == 0:
		return DataUnavailable
	case c.Failures > 0:
		return DataPartial
	default:
		return DataComplete
	}
}

// Aggregator drives a Fetcher over a whole plan with bounded concurrency.
type Aggregator struct {
	fetcher       *Fetcher
	maxConcurrent int
}

// NewAggregator creates an Aggregator. maxConcurrent < 1 falls back to the default.
func NewAggregator(fetcher *Fetcher, maxConcurrent int) *Aggregator {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	return &Aggregator{fetcher: fetcher, maxConcurrent: maxConcurrent}
}

// Collect fetches every point and merges the successful observations.
// Failed points are counted, never dropped. When every point fails the merged
// data is empty and no error is returned. Cancelling ctx cancels all
// outstanding fetches; the returned Collection should then be discarded.
func (a *Aggregator) Collect(ctx context.Context, coords Coordinates, points []SamplePoint) Collection {
	outcomes := make([]FetchOutcome, len(points))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)

	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			// each task owns outcomes[i] exclusively
			outcomes[i] = a.fetcher.Fetch(gCtx, coords, p)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	return merge(outcomes)
}

func merge(outcomes []FetchOutcome) Collection {
	c := Collection{Outcomes: outcomes}

	total := 0
	for _, o := range outcomes {
		if o.OK() {
			total += len(o.Observations)
		}
	}

	c.Observations = make([]HourlyObservation, 0, total)
	for _, o := range outcomes {
		if !o.OK() {
			c.Failures++
			continue
		}
		c.Successes++
		c.Observations = append(c.Observations, o.Observations...)
	}

	return c
}
