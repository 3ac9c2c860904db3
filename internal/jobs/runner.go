package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Job is a single maintenance task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner executes jobs and tags every run with an id in the log.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger.With("system", "jobs")}
}

// RunOnce runs each job in order. Every job runs even if an earlier one fails;
// the failures are joined.
func (r *Runner) RunOnce(ctx context.Context, jobs ...Job) error {
	var errs []error
	for _, job := range jobs {
		runID := uuid.NewString()
		start := time.Now()
		log := r.logger.With("job", job.Name(), "run_id", runID)

		if err := job.Run(ctx); err != nil {
			log.Error("job failed", "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", job.Name(), err))
			continue
		}
		log.Info("job finished", "duration", time.Since(start))
	}
	return errors.Join(errs...)
}

// RunEvery runs the jobs immediately and then once per interval until ctx is
// done. Job failures are logged and do not stop the loop.
func (r *Runner) RunEvery(ctx context.Context, interval time.Duration, jobs ...Job) error {
	if interval <= 0 {
		return fmt.Errorf("jobs: interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_ = r.RunOnce(ctx, jobs...)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
