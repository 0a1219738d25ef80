package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// CacheWarmer is the part of the geocoding layer the scheduler maintains.
type CacheWarmer interface {
	Warm(ctx context.Context, locations []string) int
	Prune() int
}

// Scheduler periodically prunes the geocode cache and pre-resolves
// frequently requested locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    CacheWarmer
	locations []string
	interval  time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, warmer CacheWarmer, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		warmer:    warmer,
		locations: locations,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the maintenance job and starts the underlying scheduler.
// The job runs once immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce prunes expired entries and warms the configured locations.
func (s *Scheduler) RunOnce() {
	pruned := s.warmer.Prune()

	resolved := 0
	if len(s.locations) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resolved = s.warmer.Warm(ctx, s.locations)
	}

	s.logger.Infow("geocode cache maintenance completed",
		"pruned", pruned,
		"warmed", resolved,
		"configured", len(s.locations),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
