package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper removes stale files older than maxAge.
type Sweeper interface {
	Sweep(now time.Time, maxAge time.Duration) (int, error)
}

// Scheduler periodically sweeps upload leftovers that a crashed request never released.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	maxAge    time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(sweeper Sweeper, interval, maxAge time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		maxAge:    maxAge,
		logger:    logger,
	}
}

// RunOnce performs a single sweep.
func (s *Scheduler) RunOnce() {
	n, err := s.sweeper.Sweep(time.Now(), s.maxAge)
	if err != nil {
		s.logger.Error("scheduler: upload sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("scheduler: removed stale uploads", "count", n)
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: sweep interval not set; nothing to schedule")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
