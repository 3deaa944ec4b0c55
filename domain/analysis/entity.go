package analysis

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Job types. Each names a recurring or on-demand analysis.
const (
	JobFull        = "full"
	JobInference   = "inference"
	JobDedup       = "dedup"
	JobAutoApprove = "auto_approve"
	JobGaps        = "gaps"
)

// Execution states
const (
	ExecutionRunning   = "running"
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
)

// JobTypes lists all known job types in registration order
var JobTypes = []string{JobFull, JobInference, JobDedup, JobAutoApprove, JobGaps}

// OntologyJob represents a row in kb.ontology_jobs: a named analysis with
// a cron-like schedule. Disabling removes it from the recurring timeline
// but never blocks manual triggers.
type OntologyJob struct {
	bun.BaseModel `bun:"table:kb.ontology_jobs,alias:oj"`

	ID       string     `bun:"id,pk,type:uuid" json:"id"`
	Name     string     `bun:"name,notnull" json:"name"`
	Type     string     `bun:"type,notnull" json:"type"`
	Schedule string     `bun:"schedule,notnull" json:"schedule"`
	Enabled  bool       `bun:"enabled,notnull" json:"enabled"`
	LastRun  *time.Time `bun:"last_run" json:"lastRun,omitempty"`
	NextRun  *time.Time `bun:"next_run" json:"nextRun,omitempty"`
	RunCount int        `bun:"run_count,notnull" json:"runCount"`
}

// JobExecution represents a row in kb.ontology_job_executions. Executions
// are independent: re-triggering a running job type starts another one.
type JobExecution struct {
	bun.BaseModel `bun:"table:kb.ontology_job_executions,alias:oje"`

	ID          string          `bun:"id,pk,type:uuid" json:"id"`
	JobType     string          `bun:"job_type,notnull" json:"jobType"`
	Status      string          `bun:"status,notnull" json:"status"`
	StartedAt   time.Time       `bun:"started_at,notnull,default:now()" json:"startedAt"`
	CompletedAt *time.Time      `bun:"completed_at" json:"completedAt,omitempty"`
	DurationMS  *int64          `bun:"duration_ms" json:"durationMs,omitempty"`
	Results     json.RawMessage `bun:"results,type:jsonb" json:"results,omitempty"`
	Error       *string         `bun:"error" json:"error,omitempty"`
}

// WorkerStatus aggregates execution counts and scheduler state
type WorkerStatus struct {
	SchedulerRunning bool           `json:"schedulerRunning"`
	Executions       map[string]int `json:"executions"` // status -> count
	ScheduledJobs    []string       `json:"scheduledJobs"`
}
