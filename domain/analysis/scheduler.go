package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/robfig/cron/v3"

	"github.com/ontoscope/ontoscope/pkg/logger"
)

// TaskFunc is the function signature for scheduled tasks
type TaskFunc func(ctx context.Context) error

// Scheduler manages the recurring job timeline using robfig/cron.
// It supports cron expressions and @every intervals.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	tasks   map[string]cron.EntryID
	mu      sync.RWMutex
	running bool
}

// NewScheduler creates a new scheduler
func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		log:   log.With(logger.Scope("scheduler")),
		tasks: make(map[string]cron.EntryID),
	}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", slog.Int("tasks", len(s.tasks)))
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.log.Info("scheduler stopped gracefully")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timeout")
	}

	s.running = false
	return nil
}

// AddTask puts a named task on the recurring timeline, replacing any
// existing entry with the same name. The schedule must already be
// validated.
func (s *Scheduler) AddTask(name, schedule string, task TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.tasks[name]; ok {
		s.cron.Remove(entryID)
		delete(s.tasks, name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runTask(name, task)
	})
	if err != nil {
		return err
	}

	s.tasks[name] = entryID
	s.log.Info("added scheduled task",
		slog.String("name", name),
		slog.String("schedule", schedule))
	return nil
}

// RemoveTask removes a task from the timeline
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.tasks[name]; ok {
		s.cron.Remove(entryID)
		delete(s.tasks, name)
		s.log.Info("removed task", slog.String("name", name))
	}
}

// runTask executes a task with error handling
func (s *Scheduler) runTask(name string, task TaskFunc) {
	startTime := time.Now()
	s.log.Debug("running scheduled task", slog.String("name", name))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := task(ctx); err != nil {
		s.log.Error("scheduled task failed",
			slog.String("name", name),
			logger.Error(err),
			slog.Duration("duration", time.Since(startTime)))
		return
	}

	s.log.Debug("scheduled task completed",
		slog.String("name", name),
		slog.Duration("duration", time.Since(startTime)))
}

// ListTasks returns the names of all scheduled tasks
func (s *Scheduler) ListTasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	return names
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// predefined descriptors robfig/cron accepts besides @every
var cronDescriptors = map[string]struct{}{
	"@hourly":   {},
	"@daily":    {},
	"@midnight": {},
	"@weekly":   {},
	"@monthly":  {},
	"@yearly":   {},
	"@annually": {},
}

// ValidateSchedule checks a schedule string before it reaches the
// timeline: @every durations parse with time.ParseDuration, descriptors
// against the known set, and plain cron expressions with gronx.
func ValidateSchedule(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return fmt.Errorf("schedule must not be empty")
	}

	if after, ok := strings.CutPrefix(schedule, "@every "); ok {
		d, err := time.ParseDuration(after)
		if err != nil {
			return fmt.Errorf("invalid @every interval %q: %w", after, err)
		}
		if d <= 0 {
			return fmt.Errorf("@every interval must be positive")
		}
		return nil
	}

	if strings.HasPrefix(schedule, "@") {
		if _, ok := cronDescriptors[schedule]; !ok {
			return fmt.Errorf("unknown schedule descriptor %q", schedule)
		}
		return nil
	}

	if !gronx.New().IsValid(schedule) {
		return fmt.Errorf("invalid cron expression %q", schedule)
	}
	return nil
}

// NextRunAt computes the next fire time for a schedule, or nil when it
// cannot be derived.
func NextRunAt(schedule string, from time.Time) *time.Time {
	schedule = strings.TrimSpace(schedule)

	if after, ok := strings.CutPrefix(schedule, "@every "); ok {
		d, err := time.ParseDuration(after)
		if err != nil {
			return nil
		}
		next := from.Add(d)
		return &next
	}

	if _, ok := cronDescriptors[schedule]; ok {
		// Descriptors map onto plain cron expressions for next-run math
		expr := map[string]string{
			"@hourly":   "0 * * * *",
			"@daily":    "0 0 * * *",
			"@midnight": "0 0 * * *",
			"@weekly":   "0 0 * * 0",
			"@monthly":  "0 0 1 * *",
			"@yearly":   "0 0 1 1 *",
			"@annually": "0 0 1 1 *",
		}[schedule]
		schedule = expr
	}

	next, err := gronx.NextTickAfter(schedule, from, false)
	if err != nil {
		return nil
	}
	return &next
}
