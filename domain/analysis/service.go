package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/apperror"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// triggerTimeout bounds a manually triggered execution
const triggerTimeout = 30 * time.Minute

// Service manages job definitions, the recurring timeline, and
// execution records.
type Service struct {
	repo      *Repository
	runner    *Runner
	scheduler *Scheduler
	cfg       *config.Config
	log       *slog.Logger
}

// NewService creates the analysis service
func NewService(
	repo *Repository,
	runner *Runner,
	scheduler *Scheduler,
	cfg *config.Config,
	log *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		runner:    runner,
		scheduler: scheduler,
		cfg:       cfg,
		log:       log.With(logger.Scope("analysis")),
	}
}

// defaultJob returns the seed definition for a job type
func (s *Service) defaultJob(jobType string) OntologyJob {
	jc := s.cfg.Jobs
	switch jobType {
	case JobFull:
		return OntologyJob{Name: "Full analysis", Type: JobFull, Schedule: jc.FullAnalysisSchedule, Enabled: true}
	case JobInference:
		return OntologyJob{Name: "LLM inference", Type: JobInference, Schedule: jc.InferenceSchedule, Enabled: false}
	case JobDedup:
		return OntologyJob{Name: "Duplicate detection", Type: JobDedup, Schedule: jc.DedupSchedule, Enabled: true}
	case JobAutoApprove:
		return OntologyJob{Name: "Auto-approve suggestions", Type: JobAutoApprove, Schedule: jc.AutoApproveSchedule, Enabled: true}
	case JobGaps:
		return OntologyJob{Name: "Gap detection", Type: JobGaps, Schedule: jc.GapDetectionSchedule, Enabled: true}
	default:
		return OntologyJob{Name: jobType, Type: jobType, Schedule: "@every 24h"}
	}
}

// EnsureDefaults seeds missing job definitions and registers enabled
// jobs on the recurring timeline.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	for _, jobType := range JobTypes {
		job := s.defaultJob(jobType)
		if err := ValidateSchedule(job.Schedule); err != nil {
			return fmt.Errorf("invalid configured schedule for %s: %w", jobType, err)
		}
		if err := s.repo.EnsureJob(ctx, &job); err != nil {
			return err
		}
	}

	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if !job.Enabled {
			continue
		}
		if err := s.schedule(job); err != nil {
			s.log.Warn("failed to schedule job",
				slog.String("type", job.Type),
				logger.Error(err))
		}
	}
	return nil
}

// schedule puts a job on the recurring timeline
func (s *Service) schedule(job OntologyJob) error {
	jobType := job.Type
	return s.scheduler.AddTask(jobType, job.Schedule, func(ctx context.Context) error {
		_, err := s.execute(ctx, jobType)
		return err
	})
}

// ListJobs returns all job definitions
func (s *Service) ListJobs(ctx context.Context) ([]OntologyJob, error) {
	return s.repo.ListJobs(ctx)
}

// Toggle enables or disables a job. Disabling removes it from the
// recurring timeline; manual triggers stay available either way.
func (s *Service) Toggle(ctx context.Context, jobType string, enabled bool) (*OntologyJob, error) {
	job, err := s.repo.GetJobByType(ctx, jobType)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NewNotFound("Job", jobType)
	}

	var nextRun *time.Time
	if enabled {
		nextRun = NextRunAt(job.Schedule, time.Now())
		if err := s.schedule(*job); err != nil {
			return nil, fmt.Errorf("failed to schedule job: %w", err)
		}
	} else {
		s.scheduler.RemoveTask(jobType)
	}

	if err := s.repo.SetEnabled(ctx, jobType, enabled, nextRun); err != nil {
		return nil, err
	}

	job.Enabled = enabled
	job.NextRun = nextRun
	s.log.Info("job toggled",
		slog.String("type", jobType),
		slog.Bool("enabled", enabled))
	return job, nil
}

// Trigger starts a job immediately, regardless of its enabled flag. The
// execution runs in the background; the returned record is the running
// execution. Concurrent triggers of the same type run independently.
func (s *Service) Trigger(ctx context.Context, jobType string) (*JobExecution, error) {
	job, err := s.repo.GetJobByType(ctx, jobType)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NewNotFound("Job", jobType)
	}

	exec, err := s.repo.StartExecution(ctx, jobType)
	if err != nil {
		return nil, err
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
		defer cancel()
		s.run(runCtx, exec)
	}()

	s.log.Info("job triggered",
		slog.String("type", jobType),
		slog.String("execution_id", exec.ID))
	return exec, nil
}

// execute runs a job synchronously, recording its execution
func (s *Service) execute(ctx context.Context, jobType string) (*JobExecution, error) {
	exec, err := s.repo.StartExecution(ctx, jobType)
	if err != nil {
		return nil, err
	}
	s.run(ctx, exec)
	return exec, nil
}

// run drives the job body and finalizes the execution record
func (s *Service) run(ctx context.Context, exec *JobExecution) {
	results, runErr := s.runner.Run(ctx, exec.JobType)

	if err := s.repo.FinishExecution(ctx, exec, results, runErr); err != nil {
		s.log.Error("failed to finish execution",
			slog.String("execution_id", exec.ID),
			logger.Error(err))
	}
	if runErr != nil {
		s.log.Error("job failed",
			slog.String("type", exec.JobType),
			slog.String("execution_id", exec.ID),
			logger.Error(runErr))
	}

	nextRun := NextRunAt(s.scheduleFor(ctx, exec.JobType), time.Now())
	if err := s.repo.RecordRun(ctx, exec.JobType, exec.StartedAt, nextRun); err != nil {
		s.log.Warn("failed to record run", logger.Error(err))
	}

	if pruned, err := s.repo.PruneExecutions(ctx, exec.JobType, s.cfg.Jobs.ExecutionRetention); err != nil {
		s.log.Warn("failed to prune executions", logger.Error(err))
	} else if pruned > 0 {
		s.log.Debug("pruned executions",
			slog.String("type", exec.JobType),
			slog.Int64("deleted", pruned))
	}
}

func (s *Service) scheduleFor(ctx context.Context, jobType string) string {
	job, err := s.repo.GetJobByType(ctx, jobType)
	if err != nil || job == nil {
		return s.defaultJob(jobType).Schedule
	}
	return job.Schedule
}

// Executions returns the execution log, most recent first
func (s *Service) Executions(ctx context.Context, query ExecutionQuery) ([]JobExecution, error) {
	if query.Limit <= 0 {
		query.Limit = s.cfg.Jobs.ExecutionLogLimit
	}
	return s.repo.ListExecutions(ctx, query)
}

// Status aggregates scheduler state and execution counts
func (s *Service) Status(ctx context.Context) (*WorkerStatus, error) {
	counts, err := s.repo.CountExecutionsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	scheduled := s.scheduler.ListTasks()
	sort.Strings(scheduled)

	return &WorkerStatus{
		SchedulerRunning: s.scheduler.IsRunning(),
		Executions:       counts,
		ScheduledJobs:    scheduled,
	}, nil
}
