package suggestions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/internal/database"
	"github.com/ontoscope/ontoscope/pkg/apperror"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Service drives the suggestion lifecycle. Approvals apply the proposed
// definition to the schema store and append the audit entry inside one
// transaction: both become visible or neither does.
type Service struct {
	repo  *Repository
	audit *AuditRepository
	store *ontology.SchemaStore
	db    bun.IDB
	log   *slog.Logger
}

// NewService creates the suggestions service
func NewService(
	repo *Repository,
	audit *AuditRepository,
	store *ontology.SchemaStore,
	db bun.IDB,
	log *slog.Logger,
) *Service {
	return &Service{
		repo:  repo,
		audit: audit,
		store: store,
		db:    db,
		log:   log.With(logger.Scope("suggestions")),
	}
}

// Repo exposes the repository for collaborating services
func (s *Service) Repo() *Repository {
	return s.repo
}

// Audit exposes the audit repository for collaborating services
func (s *Service) Audit() *AuditRepository {
	return s.audit
}

// ResolutionResult reports the outcome of an approve/reject call. When the
// suggestion was already terminal the existing state is reported and
// nothing was changed.
type ResolutionResult struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	AlreadyResolved bool   `json:"alreadyResolved"`
	SchemaVersion   int    `json:"schemaVersion,omitempty"`
}

// List returns suggestions filtered by status
func (s *Service) List(ctx context.Context, status string, limit int) ([]OntologySuggestion, error) {
	return s.repo.List(ctx, status, limit)
}

// Approve applies a pending suggestion to the schema and records the
// change. An unknown id fails with not-found; an already-terminal
// suggestion is a no-op reporting its existing state.
func (s *Service) Approve(ctx context.Context, id string) (*ResolutionResult, error) {
	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if suggestion == nil {
		return nil, apperror.NewNotFound("Suggestion", id)
	}
	if suggestion.Terminal() {
		return &ResolutionResult{ID: id, Status: suggestion.Status, AlreadyResolved: true}, nil
	}

	tx, err := database.BeginSafeTx(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to begin approval transaction: %w", err)
	}
	defer tx.Rollback()

	// The pending guard serializes concurrent approvals of the same
	// suggestion: only one transaction flips the row, the rest observe the
	// terminal state and apply nothing.
	resolved, err := s.repo.Resolve(ctx, tx, id, StatusApproved, "")
	if err != nil {
		return nil, err
	}
	if !resolved {
		tx.Rollback()
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ResolutionResult{ID: id, Status: current.Status, AlreadyResolved: true}, nil
	}

	var entry ontology.ChangeEntry
	staged, err := s.store.Stage(ctx, tx, func(next *ontology.OntologySchema) error {
		switch suggestion.Kind {
		case KindEntity:
			def := suggestion.EntityType()
			if old, exists := next.EntityTypes[suggestion.Name]; exists {
				entry = ontology.ChangeEntry{ChangeType: "update", OldDefinition: old, NewDefinition: def}
			} else {
				entry = ontology.ChangeEntry{ChangeType: "add", NewDefinition: def}
			}
			next.EntityTypes[suggestion.Name] = def
		case KindRelation:
			def := suggestion.RelationType()
			if old, exists := next.RelationTypes[suggestion.Name]; exists {
				entry = ontology.ChangeEntry{ChangeType: "update", OldDefinition: old, NewDefinition: def}
			} else {
				entry = ontology.ChangeEntry{ChangeType: "add", NewDefinition: def}
			}
			next.RelationTypes[suggestion.Name] = def
		default:
			return apperror.NewValidation("unknown suggestion kind: " + suggestion.Kind)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry.TargetType = suggestion.Kind
	entry.TargetName = suggestion.Name
	entry.Reason = "suggestion approved"
	entry.Source = suggestion.Source

	if err := s.audit.LogChange(ctx, tx, entry); err != nil {
		staged.Discard()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	staged.Publish()

	s.log.Info("suggestion approved",
		slog.String("id", id),
		slog.String("kind", suggestion.Kind),
		slog.String("name", suggestion.Name),
		slog.Int("schema_version", staged.Next().Version),
	)

	return &ResolutionResult{
		ID:            id,
		Status:        StatusApproved,
		SchemaVersion: staged.Next().Version,
	}, nil
}

// Reject marks a pending suggestion rejected. The schema is untouched and
// no audit entry is written since nothing was applied.
func (s *Service) Reject(ctx context.Context, id, reason string) (*ResolutionResult, error) {
	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if suggestion == nil {
		return nil, apperror.NewNotFound("Suggestion", id)
	}
	if suggestion.Terminal() {
		return &ResolutionResult{ID: id, Status: suggestion.Status, AlreadyResolved: true}, nil
	}

	resolved, err := s.repo.Resolve(ctx, s.db, id, StatusRejected, reason)
	if err != nil {
		return nil, err
	}
	if !resolved {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ResolutionResult{ID: id, Status: current.Status, AlreadyResolved: true}, nil
	}

	s.log.Info("suggestion rejected", slog.String("id", id), slog.String("reason", reason))
	return &ResolutionResult{ID: id, Status: StatusRejected}, nil
}

// AutoApproveResult reports a batch outcome
type AutoApproveResult struct {
	Approved int `json:"approved"`
	Skipped  int `json:"skipped"`
}

// planAutoApprove selects the pending suggestions meeting the threshold
// (boundary-inclusive), preserving input order; the rest count as skipped.
func planAutoApprove(pending []OntologySuggestion, threshold float64) (toApprove []string, skipped int) {
	for _, s := range pending {
		if s.Confidence >= threshold {
			toApprove = append(toApprove, s.ID)
		} else {
			skipped++
		}
	}
	return toApprove, skipped
}

// AutoApprove approves all pending suggestions with confidence >= threshold
// (boundary-inclusive) oldest-first. A failure on one suggestion is counted
// as skipped and does not abort the batch, so audit entries land in
// creation order for the approved subset.
func (s *Service) AutoApprove(ctx context.Context, threshold float64) (*AutoApproveResult, error) {
	pending, err := s.repo.List(ctx, StatusPending, 0)
	if err != nil {
		return nil, err
	}

	toApprove, skipped := planAutoApprove(pending, threshold)
	result := &AutoApproveResult{Skipped: skipped}
	for _, id := range toApprove {
		res, err := s.Approve(ctx, id)
		if err != nil {
			s.log.Warn("auto-approve failed for suggestion",
				slog.String("id", id),
				logger.Error(err),
			)
			result.Skipped++
			continue
		}
		if res.AlreadyResolved {
			result.Skipped++
			continue
		}
		result.Approved++
	}

	s.log.Info("auto-approve completed",
		slog.Float64("threshold", threshold),
		slog.Int("approved", result.Approved),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Changes returns the change history
func (s *Service) Changes(ctx context.Context, query ChangeQuery) ([]OntologyChange, error) {
	return s.audit.ListChanges(ctx, query)
}
