package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/pkg/backoff"
)

// DefaultExecutionLimit bounds execution log reads when no limit is given
const DefaultExecutionLimit = 50

// Repository handles database operations for jobs and executions
type Repository struct {
	db bun.IDB
}

// NewRepository creates a new analysis repository
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// EnsureJob inserts a job definition if none exists for its type
func (r *Repository) EnsureJob(ctx context.Context, job *OntologyJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	_, err := r.db.NewInsert().
		Model(job).
		On("CONFLICT (type) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure job %s: %w", job.Type, err)
	}
	return nil
}

// ListJobs returns all job definitions ordered by name
func (r *Repository) ListJobs(ctx context.Context) ([]OntologyJob, error) {
	var jobs []OntologyJob
	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		jobs = jobs[:0]
		return r.db.NewSelect().
			Model(&jobs).
			Order("name ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJobByType returns a job definition or nil if unknown
func (r *Repository) GetJobByType(ctx context.Context, jobType string) (*OntologyJob, error) {
	var job OntologyJob
	err := r.db.NewSelect().
		Model(&job).
		Where("type = ?", jobType).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// SetEnabled flips a job's enabled flag and updates its next run time
func (r *Repository) SetEnabled(ctx context.Context, jobType string, enabled bool, nextRun *time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*OntologyJob)(nil)).
		Set("enabled = ?", enabled).
		Set("next_run = ?", nextRun).
		Where("type = ?", jobType).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to toggle job: %w", err)
	}
	return nil
}

// RecordRun bumps a job's run counter and updates its timestamps
func (r *Repository) RecordRun(ctx context.Context, jobType string, ranAt time.Time, nextRun *time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*OntologyJob)(nil)).
		Set("last_run = ?", ranAt).
		Set("next_run = ?", nextRun).
		Set("run_count = run_count + 1").
		Where("type = ?", jobType).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// StartExecution inserts a running execution record
func (r *Repository) StartExecution(ctx context.Context, jobType string) (*JobExecution, error) {
	exec := &JobExecution{
		ID:        uuid.NewString(),
		JobType:   jobType,
		Status:    ExecutionRunning,
		StartedAt: time.Now(),
	}
	if _, err := r.db.NewInsert().Model(exec).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to start execution: %w", err)
	}
	return exec, nil
}

// FinishExecution marks an execution completed or failed
func (r *Repository) FinishExecution(ctx context.Context, exec *JobExecution, results map[string]any, runErr error) error {
	now := time.Now()
	duration := now.Sub(exec.StartedAt).Milliseconds()

	exec.CompletedAt = &now
	exec.DurationMS = &duration

	if runErr != nil {
		exec.Status = ExecutionFailed
		msg := runErr.Error()
		exec.Error = &msg
	} else {
		exec.Status = ExecutionCompleted
		if results != nil {
			raw, err := json.Marshal(results)
			if err != nil {
				return fmt.Errorf("failed to encode results: %w", err)
			}
			exec.Results = raw
		}
	}

	_, err := r.db.NewUpdate().
		Model(exec).
		Column("status", "completed_at", "duration_ms", "results", "error").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finish execution: %w", err)
	}
	return nil
}

// ExecutionQuery filters the execution log
type ExecutionQuery struct {
	JobType string
	Status  string
	Limit   int
}

// ListExecutions returns executions most-recent-first, bounded by limit
// (default 50).
func (r *Repository) ListExecutions(ctx context.Context, query ExecutionQuery) ([]JobExecution, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultExecutionLimit
	}

	var executions []JobExecution
	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		executions = executions[:0]
		q := r.db.NewSelect().
			Model(&executions).
			Order("started_at DESC").
			Limit(limit)
		if query.JobType != "" {
			q = q.Where("job_type = ?", query.JobType)
		}
		if query.Status != "" {
			q = q.Where("status = ?", query.Status)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	return executions, nil
}

// CountExecutionsByStatus returns execution counts grouped by status
func (r *Repository) CountExecutionsByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	_, err := r.db.NewRaw(`
		SELECT status, COUNT(*) AS count
		FROM kb.ontology_job_executions
		GROUP BY status
	`).Exec(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// PruneExecutions deletes rows beyond the newest keep entries for a job
// type. Retention is generous; the execution log is an operational aid,
// not an audit trail.
func (r *Repository) PruneExecutions(ctx context.Context, jobType string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	res, err := r.db.NewRaw(`
		DELETE FROM kb.ontology_job_executions
		WHERE job_type = ? AND id NOT IN (
			SELECT id FROM kb.ontology_job_executions
			WHERE job_type = ?
			ORDER BY started_at DESC
			LIMIT ?
		)
	`, jobType, jobType, keep).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune executions: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return deleted, nil
}
