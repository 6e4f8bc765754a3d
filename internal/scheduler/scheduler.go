package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

// Loader reloads the dataset.
type Loader interface {
	Load(ctx context.Context) (*airquality.Dataset, error)
}

// Scheduler periodically reloads the dataset from its source.
type Scheduler struct {
	scheduler *gocron.Scheduler
	loader    Loader
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. A non-positive interval disables reloading.
func New(interval, timeout time.Duration, loader Loader, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		loader:    loader,
		interval:  interval,
		timeout:   timeout,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the reload job and starts the underlying scheduler.
// The first run happens one interval after start; the initial load is the caller's job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("dataset refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.reload)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("dataset refresh scheduled", "interval", s.interval)
	return nil
}

func (s *Scheduler) reload() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("running dataset reload job")
	ds, err := s.loader.Load(ctx)
	if err != nil {
		// The store keeps serving the last good snapshot.
		s.logger.Error("dataset reload failed", "err", err)
		return
	}
	s.logger.Info("dataset reload completed", "id", ds.ID, "rows", ds.Rows)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
