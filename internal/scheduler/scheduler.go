package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the refresh work the scheduler triggers.
type Job func(ctx context.Context)

// Scheduler wraps a cron runner around the refresh job.
type Scheduler struct {
	cron   *cron.Cron
	job    Job
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. The spec is a standard 5-field cron expression.
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:   cron.New(),
		job:    job,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("register refresh job %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the schedule. If runOnStart is set, the job fires once
// immediately in a goroutine.
func (s *Scheduler) Start(ctx context.Context, runOnStart bool) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if runOnStart {
		go s.run()
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "run_on_start", runOnStart)
}

// Stop halts the schedule and waits for a running job to finish, up to
// the context deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// RunNow triggers the job immediately.
func (s *Scheduler) RunNow() {
	s.run()
}

func (s *Scheduler) run() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info("refresh job starting")
	s.job(ctx)
	s.logger.Info("refresh job finished", "duration", time.Since(start))
}
