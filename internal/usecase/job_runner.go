package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/grid-manager/internal/platform/logging"
)

const defaultJobInterval = 30 * time.Minute

// ScoringPassRunner is the job executed on every tick.
type ScoringPassRunner interface {
	RunScoringPass(ctx context.Context) (PassResult, error)
}

// JobRunner ticks the scoring pass in-process until its context is cancelled.
type JobRunner struct {
	runner   ScoringPassRunner
	interval time.Duration
	logger   *logging.Logger
}

func NewJobRunner(runner ScoringPassRunner, interval time.Duration, logger *logging.Logger) *JobRunner {
	if interval <= 0 {
		interval = defaultJobInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobRunner{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run executes one pass immediately, then one per interval.
func (r *JobRunner) Run(ctx context.Context) {
	r.logger.InfoContext(ctx, "scoring job runner started", "interval", r.interval.String())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "scoring job runner stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *JobRunner) tick(ctx context.Context) {
	result, err := r.runner.RunScoringPass(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "scheduled scoring pass failed", "error", err)
		return
	}
	if result.Debounced {
		r.logger.DebugContext(ctx, "scheduled scoring pass debounced")
		return
	}
	r.logger.InfoContext(ctx, "scheduled scoring pass done", "sessions_processed", len(result.SessionsProcessed))
}
