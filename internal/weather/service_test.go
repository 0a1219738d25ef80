package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

var paris = Coordinates{Latitude: 48.8566, Longitude: 2.3522}

func newTestService(provider Provider, resolver Resolver, charts ChartRenderer) *Service {
	return NewService(resolver, provider, ServiceConfig{
		Window:               DefaultWindow,
		MaxConcurrentFetches: 4,
		Fetcher:              fastFetcherConfig(),
		Charts:               charts,
		Now:                  func() time.Time { return serviceNow },
	}, nil)
}

func TestAnalyzePartialHistory(t *testing.T) {
	target := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	plan := Plan(target, serviceNow, DefaultWindow)
	require.Len(t, plan, 25)

	succeed := make(map[time.Time]bool)
	rainy := make(map[time.Time]bool)
	for i, p := range plan[:12] {
		succeed[p.Date] = true
		if i < 3 {
			rainy[p.Date] = true
		}
	}

	provider := &funcProvider{fetch: func(_ context.Context, _ Coordinates, date time.Time) ([]HourlyObservation, error) {
		if !succeed[date] {
			return nil, fmt.Errorf("%w: status 404", ErrInvalidRequest)
		}
		precip := 0.0
		if rainy[date] {
			precip = 3.5
		}
		return []HourlyObservation{obsAt(date, 14, ptr(precip), ptr(65), ptr(4))}, nil
	}}

	svc := newTestService(provider, staticResolver{coords: paris}, nil)
	result, err := svc.Analyze(context.Background(), AnalysisRequest{
		Location:   "Paris",
		StartDate:  "2025-07-14",
		Conditions: []string{"rain"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris", result.Location)
	assert.Equal(t, paris, result.Coordinates)
	assert.Equal(t, "2025-07-14", result.Date)
	require.Len(t, result.HourlyProbabilities, 1)
	assert.Equal(t, 14, result.HourlyProbabilities[0].Hour)
	assert.InDelta(t, 25.0, result.HourlyProbabilities[0].RainProb, 1e-9)
	assert.Equal(t, ConfidenceHigh, result.ConfidenceLevel)
	assert.Equal(t, 25, result.PlannedSamples)
	assert.Equal(t, 12, result.SuccessfulSamples)
	assert.Equal(t, DataPartial, result.DataStatus)
	assert.Contains(t, result.SummaryText, "Chance of rain: 25.0%.")
	assert.EqualValues(t, 25, provider.calls.Load())
}

func TestAnalyzeAllProvidersFail(t *testing.T) {
	provider := &funcProvider{fetch: func(context.Context, Coordinates, time.Time) ([]HourlyObservation, error) {
		return nil, fmt.Errorf("%w: status 500", ErrProviderFailure)
	}}

	svc := newTestService(provider, staticResolver{coords: paris}, nil)
	result, err := svc.Analyze(context.Background(), AnalysisRequest{Location: "Paris", StartDate: "2025-07-14"})
	require.NoError(t, err)

	assert.Equal(t, ConfidenceLow, result.ConfidenceLevel)
	assert.NotNil(t, result.HourlyProbabilities)
	assert.Empty(t, result.HourlyProbabilities)
	assert.Equal(t, DataUnavailable, result.DataStatus)
	assert.Zero(t, result.SuccessfulSamples)
	assert.Equal(t, noDataText, result.SummaryText)
}

func TestAnalyzeEmptyPayloads(t *testing.T) {
	provider := &funcProvider{fetch: func(context.Context, Coordinates, time.Time) ([]HourlyObservation, error) {
		return []HourlyObservation{}, nil
	}}

	svc := newTestService(provider, staticResolver{coords: paris}, nil)
	result, err := svc.Analyze(context.Background(), AnalysisRequest{Location: "Paris", StartDate: "2025-07-14"})
	require.NoError(t, err)

	assert.Empty(t, result.HourlyProbabilities)
	assert.Equal(t, ConfidenceLow, result.ConfidenceLevel)
	assert.Equal(t, DataUnavailable, result.DataStatus)
	assert.Zero(t, result.SuccessfulSamples)
	assert.Equal(t, 25, result.PlannedSamples)
	assert.Equal(t, noDataText, result.SummaryText)
}

func TestAnalyzeLeapDay(t *testing.T) {
	var seen []time.Time
	done := make(chan time.Time, 25)
	provider := &funcProvider{fetch: func(_ context.Context, _ Coordinates, date time.Time) ([]HourlyObservation, error) {
		done <- date
		return []HourlyObservation{obsAt(date, 9, ptr(0), ptr(45), ptr(2))}, nil
	}}

	svc := newTestService(provider, staticResolver{coords: paris}, nil)
	result, err := svc.Analyze(context.Background(), AnalysisRequest{Location: "Paris", StartDate: "2024-02-29"})
	require.NoError(t, err)
	assert.Equal(t, 25, result.PlannedSamples)
	assert.Equal(t, 25, result.SuccessfulSamples)

	close(done)
	for d := range done {
		seen = append(seen, d)
	}
	assert.Contains(t, seen, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, seen, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))
	assert.NotContains(t, seen, time.Date(2023, 3, 29, 0, 0, 0, 0, time.UTC))
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	provider := &funcProvider{fetch: func(context.Context, Coordinates, time.Time) ([]HourlyObservation, error) {
		return nil, nil
	}}
	svc := newTestService(provider, staticResolver{coords: paris}, nil)

	cases := map[string]AnalysisRequest{
		"bad start date":  {Location: "Paris", StartDate: "07/14/2025"},
		"impossible date": {Location: "Paris", StartDate: "2025-02-30"},
		"bad end date":    {Location: "Paris", StartDate: "2025-07-14", EndDate: "soon"},
		"multi-day range": {Location: "Paris", StartDate: "2025-07-14", EndDate: "2025-07-20"},
		"blank location":  {Location: "   ", StartDate: "2025-07-14"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, provider.calls.Load())

	_, err := svc.Analyze(context.Background(), AnalysisRequest{Location: "Paris", StartDate: "2025-07-14", EndDate: "2025-07-14"})
	assert.NoError(t, err)
}

func TestAnalyzeInvalidCoordinates(t *testing.T) {
	provider := &funcProvider{fetch: func(context.Context, Coordinates, time.Time) ([]HourlyObservation, error) {
		return nil, nil
	}}
	svc := newTestService(provider, staticResolver{coords: Coordinates{Latitude: 123, Longitude: 0}}, nil)

	_, err := svc.Analyze(context.Background(), AnalysisRequest{Location: "Paris", StartDate: "2025-07-14"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, provider.calls.Load())
}

func TestAnalyzeLocationNotFound(t *testing.T) {
	provider := &funcProvider{fetch: func(context.Context, Coordinates, time.Time) ([]HourlyObservation, error) {
		return nil, nil
	}}

	for _, resolverErr := range []error{ErrLocationNotFound, errors.New("geocoder unreachable")} {
		svc := newTestService(provider, staticResolver{err: resolverErr}, nil)
		_, err := svc.Analyze(context.Background(), AnalysisRequest{Location: "Atlantis", StartDate: "2025-07-14"})
		assert.ErrorIs(t, err, ErrLocationNotFound)
	}
	assert.Zero(t, provider.calls.Load())
}

func TestAnalyzeCancelled(t *testing.T) {
	provider := &funcProvider{fetch: func(ctx context.Context, _ Coordinates, _ time.Time) ([]HourlyObservation, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := newTestService(provider, staticResolver{coords: paris}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := svc.Analyze(ctx, AnalysisRequest{Location: "Paris", StartDate: "2025-07-14"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type stubCharts struct {
	out string
	err error
}

func (s stubCharts) Render(string, string, []HourlyProbability) (string, error) {
	return s.out, s.err
}

func TestAnalyzeChartRendering(t *testing.T) {
	provider := &funcProvider{fetch: func(_ context.Context, _ Coordinates, date time.Time) ([]HourlyObservation, error) {
		return []HourlyObservation{obsAt(date, 10, ptr(0), ptr(30), ptr(1))}, nil
	}}
	req := AnalysisRequest{Location: "Paris", StartDate: "2025-07-14"}

	result, err := newTestService(provider, staticResolver{coords: paris}, stubCharts{out: "Y2hhcnQ="}).Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Y2hhcnQ=", result.ChartBase64)

	result, err = newTestService(provider, staticResolver{coords: paris}, stubCharts{err: errors.New("no fonts")}).Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.ChartBase64)
	assert.Equal(t, ConfidenceHigh, result.ConfidenceLevel)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(staticResolver{}, &funcProvider{name: "meteomatics"}, ServiceConfig{}, nil)
	assert.Equal(t, DefaultWindow, svc.Window())
	assert.Equal(t, "meteomatics", svc.ProviderName())
}

type searchResolver struct {
	staticResolver
	places []Place
}

func (s searchResolver) Search(context.Context, string, int) ([]Place, error) {
	return s.places, nil
}

func TestSearchLocations(t *testing.T) {
	svc := newTestService(&funcProvider{}, searchResolver{places: []Place{
		{Name: "Broken", Latitude: 200, Longitude: 0},
		{Name: "Porto, Portugal", Country: "Portugal", Latitude: 41.15, Longitude: -8.61},
		{Name: "Porto Alegre, Brazil", Country: "Brazil", Latitude: -30.03, Longitude: -51.23},
		{Name: "Porto-Vecchio, France", Country: "France", Latitude: 41.59, Longitude: 9.28},
	}}, nil)

	places, err := svc.SearchLocations(context.Background(), "Porto", 2)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Porto, Portugal", places[0].Name)
	assert.Equal(t, "Brazil", places[1].Country)

	_, err = svc.SearchLocations(context.Background(), "  ", 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
