package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/esports-stats/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/esports-stats/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

type jobDispatchTableModel struct {
	DispatchID  string         `db:"dispatch_id"`
	JobName     string         `db:"job_name"`
	Target      string         `db:"target"`
	Status      string         `db:"status"`
	Summary     []byte         `db:"summary"`
	LastError   sql.NullString `db:"last_error"`
	QueuedAt    sql.NullTime   `db:"queued_at"`
	CompletedAt sql.NullTime   `db:"completed_at"`
	FailedAt    sql.NullTime   `db:"failed_at"`
	TraceID     sql.NullString `db:"trace_id"`
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}
	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	summary := "{}"
	if len(event.Summary) > 0 {
		raw, err := sonic.MarshalString(event.Summary)
		if err != nil {
			return fmt.Errorf("marshal job dispatch summary: %w", err)
		}
		summary = raw
	}

	values := map[string]any{
		"dispatch_id":  dispatchID,
		"job_name":     jobName,
		"target":       event.Target,
		"status":       string(event.Status),
		"summary":      summary,
		"last_error":   optionalString(event.ErrorMessage),
		"trace_id":     optionalString(event.TraceID),
		"queued_at":    nil,
		"completed_at": nil,
		"failed_at":    nil,
	}
	switch event.Status {
	case jobscheduler.StatusQueued:
		values["queued_at"] = occurredAt
		values["last_error"] = nil
	case jobscheduler.StatusCompleted:
		values["completed_at"] = occurredAt
		values["last_error"] = nil
	case jobscheduler.StatusFailed:
		values["failed_at"] = occurredAt
	}

	query, args, err := qb.InsertInto("job_dispatches").SetMap(values).Suffix(`ON CONFLICT (dispatch_id)
DO UPDATE SET
    status = EXCLUDED.status,
    summary = CASE
        WHEN EXCLUDED.summary = '{}'::jsonb THEN job_dispatches.summary
        ELSE EXCLUDED.summary
    END,
    queued_at = COALESCE(job_dispatches.queued_at, EXCLUDED.queued_at),
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE job_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    trace_id = COALESCE(job_dispatches.trace_id, EXCLUDED.trace_id),
    updated_at = NOW()`).ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}
	return nil
}

func (r *JobDispatchRepository) GetByID(ctx context.Context, dispatchID string) (jobscheduler.Dispatch, bool, error) {
	query, args, err := qb.Select(
		"dispatch_id", "job_name", "target", "status", "summary",
		"last_error", "queued_at", "completed_at", "failed_at", "trace_id",
	).From("job_dispatches").
		Where(qb.Eq("dispatch_id", dispatchID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return jobscheduler.Dispatch{}, false, fmt.Errorf("build get job dispatch query: %w", err)
	}

	var row jobDispatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return jobscheduler.Dispatch{}, false, nil
		}
		return jobscheduler.Dispatch{}, false, fmt.Errorf("get job dispatch: %w", err)
	}

	out := jobscheduler.Dispatch{
		DispatchID:  row.DispatchID,
		JobName:     row.JobName,
		Target:      row.Target,
		Status:      jobscheduler.DispatchStatus(row.Status),
		LastError:   row.LastError.String,
		QueuedAt:    nullTime(row.QueuedAt),
		CompletedAt: nullTime(row.CompletedAt),
		FailedAt:    nullTime(row.FailedAt),
		TraceID:     row.TraceID.String,
	}
	if len(row.Summary) > 0 {
		var summary map[string]any
		if err := sonic.Unmarshal(row.Summary, &summary); err != nil {
			return jobscheduler.Dispatch{}, false, fmt.Errorf("decode job dispatch summary: %w", err)
		}
		out.Summary = summary
	}
	return out, true, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func nullTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
