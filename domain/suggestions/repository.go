package suggestions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/pkg/backoff"
)

// Repository handles database operations for suggestions
type Repository struct {
	db bun.IDB
}

// NewRepository creates a new suggestions repository
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pending suggestion
func (r *Repository) Create(ctx context.Context, s *OntologySuggestion) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	_, err := r.db.NewInsert().Model(s).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	return nil
}

// GetByID returns a suggestion or nil if it does not exist
func (r *Repository) GetByID(ctx context.Context, id string) (*OntologySuggestion, error) {
	var s OntologySuggestion
	err := r.db.NewSelect().
		Model(&s).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return &s, nil
}

// List returns suggestions, optionally filtered by status, oldest first
// for stable processing order.
func (r *Repository) List(ctx context.Context, status string, limit int) ([]OntologySuggestion, error) {
	var items []OntologySuggestion

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		items = items[:0]
		q := r.db.NewSelect().
			Model(&items).
			Order("created_at ASC")
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return items, nil
}

// ListPendingAbove returns pending suggestions with confidence >= threshold
// (boundary-inclusive), oldest first.
func (r *Repository) ListPendingAbove(ctx context.Context, threshold float64) ([]OntologySuggestion, error) {
	var items []OntologySuggestion
	err := r.db.NewSelect().
		Model(&items).
		Where("status = ?", StatusPending).
		Where("confidence >= ?", threshold).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending suggestions: %w", err)
	}
	return items, nil
}

// HasPendingFor reports whether a pending suggestion already exists for a
// kind/name pair, so gap detection does not pile up duplicates.
func (r *Repository) HasPendingFor(ctx context.Context, kind, name string) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*OntologySuggestion)(nil)).
		Where("kind = ?", kind).
		Where("name = ?", name).
		Where("status = ?", StatusPending).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check pending suggestion: %w", err)
	}
	return count > 0, nil
}

// CountByStatus returns suggestion counts grouped by status
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	_, err := r.db.NewRaw(`
		SELECT status, COUNT(*) AS count
		FROM kb.ontology_suggestions
		GROUP BY status
	`).Exec(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count suggestions: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Resolve marks a pending suggestion terminal inside the given
// transaction. The WHERE status = pending guard makes concurrent
// resolutions race-safe: exactly one caller observes resolved = true.
func (r *Repository) Resolve(ctx context.Context, tx bun.IDB, id, status, reason string) (bool, error) {
	now := time.Now()
	res, err := tx.NewUpdate().
		Model((*OntologySuggestion)(nil)).
		Set("status = ?", status).
		Set("reason = ?", reason).
		Set("resolved_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to resolve suggestion: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read resolution result: %w", err)
	}
	return affected > 0, nil
}

// AuditRepository appends to and reads the append-only change ledger. It
// implements ontology.ChangeLogger.
type AuditRepository struct {
	db bun.IDB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db bun.IDB) *AuditRepository {
	return &AuditRepository{db: db}
}

// LogChange appends one change entry through the given transaction handle
func (r *AuditRepository) LogChange(ctx context.Context, tx bun.IDB, entry ontology.ChangeEntry) error {
	change := &OntologyChange{
		ID:         uuid.NewString(),
		ChangeType: entry.ChangeType,
		TargetType: entry.TargetType,
		TargetName: entry.TargetName,
		Reason:     entry.Reason,
		Source:     entry.Source,
		ChangedAt:  time.Now(),
		ChangedBy:  entry.ChangedBy,
	}
	if change.ChangedBy == "" {
		change.ChangedBy = "system"
	}

	var err error
	if entry.OldDefinition != nil {
		if change.OldDefinition, err = json.Marshal(entry.OldDefinition); err != nil {
			return fmt.Errorf("failed to encode old definition: %w", err)
		}
	}
	if entry.NewDefinition != nil {
		if change.NewDefinition, err = json.Marshal(entry.NewDefinition); err != nil {
			return fmt.Errorf("failed to encode new definition: %w", err)
		}
	}
	if entry.Diff != nil {
		if change.Diff, err = json.Marshal(entry.Diff); err != nil {
			return fmt.Errorf("failed to encode diff: %w", err)
		}
	}

	if _, err := tx.NewInsert().Model(change).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append change entry: %w", err)
	}
	return nil
}

// ChangeQuery filters the change history
type ChangeQuery struct {
	TargetType string
	TargetName string
	Limit      int
}

// DefaultChangeLimit bounds unfiltered history reads
const DefaultChangeLimit = 100

// ListChanges returns change entries most-recent-first
func (r *AuditRepository) ListChanges(ctx context.Context, query ChangeQuery) ([]OntologyChange, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultChangeLimit
	}

	var changes []OntologyChange
	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		changes = changes[:0]
		q := r.db.NewSelect().
			Model(&changes).
			Order("changed_at DESC").
			Limit(limit)
		if query.TargetType != "" {
			q = q.Where("target_type = ?", query.TargetType)
		}
		if query.TargetName != "" {
			q = q.Where("target_name = ?", query.TargetName)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	return changes, nil
}
