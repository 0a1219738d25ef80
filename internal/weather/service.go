package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceConfig holds the engine settings. Values are passed explicitly so
// windows can vary per Service without touching process state.
type ServiceConfig struct {
	Window               Window
	MaxConcurrentFetches int
	Fetcher              FetcherConfig

	// Charts is optional; nil disables chart rendering.
	Charts ChartRenderer
	// Now defaults to time.Now; overridden in tests.
	Now func() time.Time
}

// Service orchestrates geocoding, historical fetching and probability analysis.
type Service struct {
	resolver   Resolver
	provider   Provider
	aggregator *Aggregator
	window     Window
	charts     ChartRenderer
	now        func() time.Time
	logger     *zap.SugaredLogger
}

// NewService creates a new Service.
func NewService(resolver Resolver, provider Provider, cfg ServiceConfig, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.Window == (Window{}) {
		cfg.Window = DefaultWindow
	}
	if cfg.Window.YearsBack < 1 {
		cfg.Window.YearsBack = DefaultWindow.YearsBack
	}
	if cfg.Window.DayRadius < 0 {
		cfg.Window.DayRadius = DefaultWindow.DayRadius
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	fetcher := NewFetcher(provider, cfg.Fetcher, logger)
	return &Service{
		resolver:   resolver,
		provider:   provider,
		aggregator: NewAggregator(fetcher, cfg.MaxConcurrentFetches),
		window:     cfg.Window,
		charts:     cfg.Charts,
		now:        cfg.Now,
		logger:     logger,
	}
}

// ProviderName returns the name of the configured historical provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Window returns the sampling window used by Analyze.
func (s *Service) Window() Window {
	return s.window
}

// Analyze estimates hourly condition probabilities for req.Location on the
// calendar date req.StartDate. It fails only with ErrInvalidInput,
// ErrLocationNotFound or a context error; provider failures are reflected in
// the result's confidence and data status.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	date, err := parseRequestDate(req)
	if err != nil {
		return AnalysisResult{}, err
	}

	log := s.logger.With("analysis_id", uuid.NewString(), "location", req.Location, "date", req.StartDate)
	if req.ActivityProfile != "" {
		// accepted for compatibility; it does not influence the probabilities
		log.Debugw("activity profile ignored by analysis", "activity_profile", req.ActivityProfile)
	}

	coords, err := s.ResolveLocation(ctx, req.Location)
	if err != nil {
		log.Infow("location resolution failed", "error", err)
		return AnalysisResult{}, err
	}

	points := Plan(date, s.now().UTC(), s.window)
	log.Debugw("historical window planned", "points", len(points), "years_back", s.window.YearsBack, "day_radius", s.window.DayRadius)

	col := s.aggregator.Collect(ctx, coords, points)
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, fmt.Errorf("analysis aborted: %w", err)
	}

	hourly := CalculateHourly(col.Observations)
	summary := Summarize(hourly)
	confidence := EstimateConfidence(col.Successes)

	result := ComposeReport(ReportInput{
		Location:    req.Location,
		Date:        req.StartDate,
		Coordinates: coords,
		Collection:  col,
		Hourly:      hourly,
		Summary:     summary,
		Confidence:  confidence,
		Checklist:   req.Conditions,
	})

	if s.charts != nil && len(hourly) > 0 {
		chart, err := s.charts.Render(req.Location, req.StartDate, hourly)
		if err != nil {
			log.Warnw("chart rendering failed", "error", err)
		} else {
			result.ChartBase64 = chart
		}
	}

	switch result.DataStatus {
	case DataUnavailable:
		log.Warnw("no historical data retrieved", "planned", col.Planned(), "provider", s.provider.Name())
	case DataPartial:
		log.Infow("partial historical data", "planned", col.Planned(), "succeeded", col.Successes, "failed", col.Failures)
	}
	log.Infow("analysis complete",
		"planned", col.Planned(),
		"succeeded", col.Successes,
		"observations", len(col.Observations),
		"confidence", confidence,
	)

	return result, nil
}

// ResolveLocation geocodes location and validates the coordinates. Resolver
// failures other than context errors are reported as ErrLocationNotFound.
func (s *Service) ResolveLocation(ctx context.Context, location string) (Coordinates, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Coordinates{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	coords, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return Coordinates{}, err
		case errors.Is(err, ErrLocationNotFound), errors.Is(err, ErrInvalidInput):
			return Coordinates{}, err
		default:
			return Coordinates{}, fmt.Errorf("%w: %q: %v", ErrLocationNotFound, location, err)
		}
	}

	if err := coords.Validate(); err != nil {
		return Coordinates{}, err
	}
	return coords, nil
}

// SearchLocations lists up to limit places matching query. Resolvers that
// cannot search yield a single place named after the query.
func (s *Service) SearchLocations(ctx context.Context, query string, limit int) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if limit < 1 {
		limit = 1
	}

	searcher, ok := s.resolver.(Searcher)
	if !ok {
		coords, err := s.ResolveLocation(ctx, query)
		if err != nil {
			return nil, err
		}
		return []Place{{Name: query, Latitude: coords.Latitude, Longitude: coords.Longitude}}, nil
	}

	found, err := searcher.Search(ctx, query, limit)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, ErrLocationNotFound), errors.Is(err, ErrInvalidInput):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %q: %v", ErrLocationNotFound, query, err)
		}
	}

	places := make([]Place, 0, len(found))
	for _, p := range found {
		if len(places) == limit {
			break
		}
		if (Coordinates{Latitude: p.Latitude, Longitude: p.Longitude}).Validate() != nil {
			s.logger.Debugw("dropping search result with invalid coordinates", "query", query, "name", p.Name)
			continue
		}
		places = append(places, p)
	}
	return places, nil
}

// parseRequestDate validates StartDate and the multi-day policy: EndDate must
// be empty or equal to StartDate because ranges are not aggregated.
func parseRequestDate(req AnalysisRequest) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(req.StartDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start date %q must use YYYY-MM-DD", ErrInvalidInput, req.StartDate)
	}

	end := strings.TrimSpace(req.EndDate)
	if end == "" {
		return date, nil
	}
	endDate, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: end date %q must use YYYY-MM-DD", ErrInvalidInput, req.EndDate)
	}
	if !endDate.Equal(date) {
		return time.Time{}, fmt.Errorf("%w: multi-day ranges are not supported; end date must equal start date", ErrInvalidInput)
	}
	return date, nil
}
