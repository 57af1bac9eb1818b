package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper re-runs checks for projects whose verdict is missing or stale.
type Sweeper interface {
	SweepStale(ctx context.Context, maxAge time.Duration, batch int) (int, error)
}

type SchedulerConfig struct {
	// Schedule is a standard five-field cron expression.
	Schedule string
	MaxAge   time.Duration
	Batch    int
}

// Scheduler runs periodic validation sweeps.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	config  SchedulerConfig
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	sweep   sync.Mutex
}

func NewScheduler(sweeper Sweeper, config SchedulerConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		config:  config,
		logger:  logger,
	}
}

// Start registers the sweep job and starts the cron loop. The job stops
// picking up work once ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("validation scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid validation schedule %q: %w", s.config.Schedule, err)
	}

	s.logger.Info("Starting validation scheduler",
		zap.String("schedule", s.config.Schedule),
		zap.Duration("max_age", s.config.MaxAge),
		zap.Int("batch", s.config.Batch))

	s.cron.Start()
	s.running = true
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.logger.Info("Stopping validation scheduler")
	<-s.cron.Stop().Done()
	s.running = false
}

// RunOnce performs a single sweep. Overlapping invocations are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	if !s.sweep.TryLock() {
		s.logger.Warn("Validation sweep still running, skipping")
		return 0
	}
	defer s.sweep.Unlock()

	start := time.Now()
	n, err := s.sweeper.SweepStale(ctx, s.config.MaxAge, s.config.Batch)
	if err != nil {
		s.logger.Error("Validation sweep failed", zap.Int("checked", n), zap.Error(err))
		return n
	}
	s.logger.Info("Validation sweep completed",
		zap.Int("checked", n),
		zap.Duration("duration", time.Since(start)))
	return n
}
