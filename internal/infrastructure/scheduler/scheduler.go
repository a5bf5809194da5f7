package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/riskibarqy/esports-stats/internal/usecase"
)

// JobRunner executes one refresh job synchronously.
type JobRunner interface {
	Run(ctx context.Context, job usecase.Job, target int64) (usecase.RefreshResult, error)
}

// Entry is one periodic refresh.
type Entry struct {
	Job      usecase.Job
	Interval time.Duration
}

type Config struct {
	Location *time.Location
	// RunOnStart fires every entry once right after Start.
	RunOnStart bool
}

// Scheduler triggers refresh jobs on fixed intervals. A job never overlaps
// with its previous run; a tick that lands while it is still running is
// skipped.
type Scheduler struct {
	runner JobRunner
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	sched   gocron.Scheduler
	baseCtx context.Context
	cancel  context.CancelFunc
}

func New(runner JobRunner, cfg Config, logger *logging.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		logger: logging.OrDefault(logger).Named("scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context, entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		return fmt.Errorf("scheduler already started")
	}
	for _, entry := range entries {
		if entry.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be > 0", entry.Job)
		}
	}

	sched, err := gocron.NewScheduler(
		gocron.WithLocation(s.cfg.Location),
		gocron.WithGlobalJobOptions(gocron.WithSingletonMode(gocron.LimitModeReschedule)),
		gocron.WithGlobalJobOptions(gocron.WithEventListeners(
			gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
				s.logger.Warn("scheduled job failed", "job", jobName, "job_id", jobID.String(), "error", err)
			}),
		)),
	)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	for _, entry := range entries {
		opts := []gocron.JobOption{gocron.WithName(string(entry.Job))}
		if s.cfg.RunOnStart {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
		if _, err := sched.NewJob(
			gocron.DurationJob(entry.Interval),
			gocron.NewTask(s.task(baseCtx, entry.Job)),
			opts...,
		); err != nil {
			cancel()
			_ = sched.Shutdown()
			return fmt.Errorf("schedule job %s: %w", entry.Job, err)
		}
		s.logger.Info("job scheduled", "job", entry.Job, "interval", entry.Interval.String())
	}

	sched.Start()
	s.sched = sched
	s.baseCtx = baseCtx
	s.cancel = cancel
	return nil
}

// Stop cancels in-flight runs and waits for the scheduler to drain.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return nil
	}
	s.cancel()
	err := s.sched.Shutdown()
	s.sched = nil
	if err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) task(ctx context.Context, job usecase.Job) func() error {
	return func() error {
		started := time.Now()
		result, err := s.runner.Run(ctx, job, 0)
		if err != nil {
			return err
		}
		s.logger.Info("scheduled job completed",
			"job", job,
			"total", result.Total,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil
	}
}
