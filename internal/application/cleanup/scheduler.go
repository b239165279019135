package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
)

type cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// Scheduler runs download request cleanup on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	svc     cleaner
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler registers the cleanup job on spec ("@every 15m", a cron expression, ...).
func NewScheduler(svc cleaner, spec string, logger *slog.Logger) (*Scheduler, error) {
	logger = logger.With("system", "cleanup_scheduler")
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			recoverWrapper(logger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		svc:     svc,
		timeout: time.Minute,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule cleanup %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("cleanup scheduler started")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("cleanup scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("cleanup scheduler stop timed out")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.svc.Cleanup(ctx)
	if err != nil {
		s.logger.Error("scheduled cleanup failed", "error", err)
		return
	}
	s.logger.Info("scheduled cleanup", "deleted", n, "duration", time.Since(start))
}

func recoverWrapper(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("job panicked", "panic", r, "stack_trace", string(debug.Stack()))
				}
			}()
			j.Run()
		})
	}
}
