package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/esports-stats/internal/domain/jobscheduler"
	"github.com/riskibarqy/esports-stats/internal/platform/id"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type Job string

const (
	JobRefreshLeagues       Job = "refresh_leagues"
	JobRefreshActiveLeagues Job = "refresh_active_leagues"
	JobRefreshLeagueSeries  Job = "refresh_league_series"
	JobRefreshTeams         Job = "refresh_teams"
	JobRefreshTeam          Job = "refresh_team"
	JobRefreshPlayer        Job = "refresh_player"
	JobRefreshProPlayers    Job = "refresh_pro_players"
)

const (
	defaultDispatchWorkers = 4
	defaultRefreshTimeout  = 30 * time.Minute
	dispatchRecordTimeout  = 10 * time.Second
)

// CacheInvalidator drops cached reads for the named entities ("league", "team", ...).
type CacheInvalidator interface {
	InvalidateEntities(ctx context.Context, entities ...string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateEntities(context.Context, ...string) {}

type DispatcherConfig struct {
	Workers int
	Timeout time.Duration
}

type jobSpec struct {
	needsTarget bool
	touches     []string
	run         func(ctx context.Context, target int64) (RefreshResult, error)
}

// Dispatcher runs refresh jobs detached from the request that asked for them
// and records each run as a job dispatch.
type Dispatcher struct {
	sync         *SyncService
	dispatchRepo jobscheduler.Repository
	cache        CacheInvalidator
	ids          id.Generator
	pool         *ants.Pool
	cfg          DispatcherConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewDispatcher(
	sync *SyncService,
	dispatchRepo jobscheduler.Repository,
	cache CacheInvalidator,
	ids id.Generator,
	cfg DispatcherConfig,
	logger *logging.Logger,
) (*Dispatcher, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultDispatchWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRefreshTimeout
	}
	if cache == nil {
		cache = noopInvalidator{}
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	logger = logging.OrDefault(logger).Named("dispatcher")

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true), ants.WithPanicHandler(func(recovered any) {
		logger.Error("refresh job panicked", "panic", recovered)
	}))
	if err != nil {
		return nil, fmt.Errorf("create dispatcher pool: %w", err)
	}

	return &Dispatcher{
		sync:         sync,
		dispatchRepo: dispatchRepo,
		cache:        cache,
		ids:          ids,
		pool:         pool,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Close waits up to timeout for running jobs and releases the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}

func (d *Dispatcher) spec(job Job) (jobSpec, bool) {
	switch job {
	case JobRefreshLeagues:
		return jobSpec{touches: []string{"league"}, run: func(ctx context.Context, _ int64) (RefreshResult, error) {
			return d.sync.RefreshLeagues(ctx)
		}}, true
	case JobRefreshActiveLeagues:
		return jobSpec{touches: []string{"league", "series", "match", "team"}, run: func(ctx context.Context, _ int64) (RefreshResult, error) {
			return d.sync.RefreshActiveLeagues(ctx)
		}}, true
	case JobRefreshLeagueSeries:
		return jobSpec{needsTarget: true, touches: []string{"league", "series", "match", "team"}, run: d.sync.RefreshLeagueSeries}, true
	case JobRefreshTeams:
		return jobSpec{touches: []string{"team"}, run: func(ctx context.Context, _ int64) (RefreshResult, error) {
			return d.sync.RefreshTeams(ctx)
		}}, true
	case JobRefreshTeam:
		return jobSpec{needsTarget: true, touches: []string{"team", "player", "league", "series", "match"}, run: d.sync.RefreshTeam}, true
	case JobRefreshPlayer:
		return jobSpec{needsTarget: true, touches: []string{"player", "team"}, run: d.sync.RefreshPlayer}, true
	case JobRefreshProPlayers:
		return jobSpec{touches: []string{"player"}, run: func(ctx context.Context, _ int64) (RefreshResult, error) {
			return d.sync.RefreshProPlayers(ctx)
		}}, true
	default:
		return jobSpec{}, false
	}
}

// Dispatch queues job and returns its dispatch id right away. The run
// outlives ctx but is bounded by the configured timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job, target int64) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Dispatcher.Dispatch")
	defer span.End()

	spec, err := d.validate(job, target)
	if err != nil {
		return "", err
	}

	dispatchID := d.ids.NewID()
	d.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    string(job),
		Target:     formatTarget(target),
		Status:     jobscheduler.StatusQueued,
	})

	detached := context.WithoutCancel(ctx)
	if err := d.pool.Submit(func() {
		runCtx, cancel := context.WithTimeout(detached, d.cfg.Timeout)
		defer cancel()
		_, _ = d.execute(runCtx, dispatchID, job, target, spec)
	}); err != nil {
		d.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dispatchID,
			Status:       jobscheduler.StatusFailed,
			ErrorMessage: err.Error(),
		})
		return "", fmt.Errorf("%w: dispatcher is busy: %v", ErrDependencyUnavailable, err)
	}

	d.logger.InfoContext(ctx, "refresh dispatched", "dispatch_id", dispatchID, "job", job, "target", target)
	return dispatchID, nil
}

// Run executes job on the caller's goroutine and records it like a dispatch.
func (d *Dispatcher) Run(ctx context.Context, job Job, target int64) (RefreshResult, error) {
	spec, err := d.validate(job, target)
	if err != nil {
		return RefreshResult{}, err
	}

	dispatchID := d.ids.NewID()
	d.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    string(job),
		Target:     formatTarget(target),
		Status:     jobscheduler.StatusQueued,
	})

	runCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()
	return d.execute(runCtx, dispatchID, job, target, spec)
}

// Status returns the recorded state of one dispatch.
func (d *Dispatcher) Status(ctx context.Context, dispatchID string) (jobscheduler.Dispatch, error) {
	dispatchID = strings.TrimSpace(dispatchID)
	if dispatchID == "" {
		return jobscheduler.Dispatch{}, fmt.Errorf("%w: dispatch id is required", ErrInvalidInput)
	}
	if d.dispatchRepo == nil {
		return jobscheduler.Dispatch{}, fmt.Errorf("%w: dispatch %s", ErrNotFound, dispatchID)
	}

	dispatch, ok, err := d.dispatchRepo.GetByID(ctx, dispatchID)
	if err != nil {
		return jobscheduler.Dispatch{}, fmt.Errorf("get dispatch %s: %w", dispatchID, err)
	}
	if !ok {
		return jobscheduler.Dispatch{}, fmt.Errorf("%w: dispatch %s", ErrNotFound, dispatchID)
	}
	return dispatch, nil
}

func (d *Dispatcher) validate(job Job, target int64) (jobSpec, error) {
	spec, ok := d.spec(job)
	if !ok {
		return jobSpec{}, fmt.Errorf("%w: unknown job %q", ErrInvalidInput, job)
	}
	if spec.needsTarget && target <= 0 {
		return jobSpec{}, fmt.Errorf("%w: job %s needs a positive target id", ErrInvalidInput, job)
	}
	return spec, nil
}

func (d *Dispatcher) execute(ctx context.Context, dispatchID string, job Job, target int64, spec jobSpec) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Dispatcher.execute")
	defer span.End()

	start := d.now()
	result, err := spec.run(ctx, target)

	// The run context may already be past its deadline; the outcome is still recorded.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchRecordTimeout)
	defer cancel()
	d.cache.InvalidateEntities(recordCtx, spec.touches...)

	summary := result.Summary()
	summary["duration_ms"] = d.now().Sub(start).Milliseconds()
	if err != nil {
		d.logger.ErrorContext(recordCtx, "refresh job failed",
			"dispatch_id", dispatchID,
			"job", job,
			"target", target,
			"error", err,
		)
		d.recordDispatchEvent(recordCtx, jobscheduler.DispatchEvent{
			DispatchID:   dispatchID,
			Status:       jobscheduler.StatusFailed,
			Summary:      summary,
			ErrorMessage: err.Error(),
		})
		return result, err
	}

	d.logger.InfoContext(recordCtx, "refresh job completed",
		"dispatch_id", dispatchID,
		"job", job,
		"target", target,
		"total", result.Total,
		"failed", result.Failed,
	)
	d.recordDispatchEvent(recordCtx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		Status:     jobscheduler.StatusCompleted,
		Summary:    summary,
	})
	return result, nil
}

func (d *Dispatcher) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if d.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}
	if err := d.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

func formatTarget(target int64) string {
	if target <= 0 {
		return ""
	}
	return strconv.FormatInt(target, 10)
}
