package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusQueued    DispatchStatus = "queued"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// DispatchEvent is one state change of a detached refresh run.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	Target       string
	Status       DispatchStatus
	Summary      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// Dispatch is the latest known state of a refresh run.
type Dispatch struct {
	DispatchID  string         `json:"dispatch_id"`
	JobName     string         `json:"job_name"`
	Target      string         `json:"target,omitempty"`
	Status      DispatchStatus `json:"status"`
	Summary     map[string]any `json:"summary,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	QueuedAt    *time.Time     `json:"queued_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	FailedAt    *time.Time     `json:"failed_at,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
}

// Apply folds an event into the dispatch state.
func (d Dispatch) Apply(event DispatchEvent) Dispatch {
	at := event.OccurredAt
	d.DispatchID = event.DispatchID
	if event.JobName != "" {
		d.JobName = event.JobName
	}
	if event.Target != "" {
		d.Target = event.Target
	}
	if event.Summary != nil {
		d.Summary = event.Summary
	}
	if event.TraceID != "" {
		d.TraceID = event.TraceID
	}
	d.Status = event.Status

	switch event.Status {
	case StatusQueued:
		d.QueuedAt = &at
		d.LastError = ""
	case StatusCompleted:
		d.CompletedAt = &at
		d.FailedAt = nil
		d.LastError = ""
	case StatusFailed:
		d.FailedAt = &at
		d.LastError = event.ErrorMessage
	}
	return d
}
