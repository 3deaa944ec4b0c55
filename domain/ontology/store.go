package ontology

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/pkg/logger"
)

// SchemaStore holds the current declared ontology. It is the sole writer
// of the schema: every mutation produces a new version row in
// kb.ontology_schemas and replaces the in-memory snapshot. Readers get
// consistent snapshots; a snapshot taken before a mutation is never
// affected by it.
type SchemaStore struct {
	db  bun.IDB
	log *slog.Logger

	// writeMu serializes mutations from Stage until Publish/Discard so
	// schema versions are strictly monotonic.
	writeMu sync.Mutex

	// mu protects the current snapshot pointer.
	mu      sync.RWMutex
	current *OntologySchema
}

// NewSchemaStore creates a schema store. Load must be called before use.
func NewSchemaStore(db bun.IDB, log *slog.Logger) *SchemaStore {
	return &SchemaStore{
		db:      db,
		log:     log.With(logger.Scope("schema-store")),
		current: NewEmptySchema(),
	}
}

// Load reads the highest-version schema row into memory. A missing row
// seeds an empty version-1 schema without persisting it.
func (s *SchemaStore) Load(ctx context.Context) error {
	var record SchemaRecord
	err := s.db.NewSelect().
		Model(&record).
		Order("version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Info("no persisted schema, starting empty")
			s.mu.Lock()
			s.current = NewEmptySchema()
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to load schema: %w", err)
	}

	schema, err := record.ToSchema()
	if err != nil {
		return fmt.Errorf("failed to decode schema version %d: %w", record.Version, err)
	}

	s.mu.Lock()
	s.current = schema
	s.mu.Unlock()

	s.log.Info("schema loaded",
		slog.Int("version", schema.Version),
		slog.Int("entity_types", len(schema.EntityTypes)),
		slog.Int("relation_types", len(schema.RelationTypes)),
	)
	return nil
}

// Current returns a deep copy of the current schema snapshot
func (s *SchemaStore) Current() *OntologySchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Version returns the current schema version
func (s *SchemaStore) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Version
}

// StagedSchema is a schema mutation that has been persisted inside a
// caller-owned transaction but not yet published to the in-memory
// snapshot. Exactly one of Publish or Discard must be called: Publish
// after the transaction commits, Discard after a rollback.
type StagedSchema struct {
	store *SchemaStore
	next  *OntologySchema
	done  bool
}

// Next returns the staged schema
func (st *StagedSchema) Next() *OntologySchema {
	return st.next
}

// Publish replaces the in-memory snapshot with the staged schema
func (st *StagedSchema) Publish() {
	if st.done {
		return
	}
	st.done = true
	st.store.mu.Lock()
	st.store.current = st.next
	st.store.mu.Unlock()
	st.store.writeMu.Unlock()

	st.store.log.Info("schema published",
		slog.Int("version", st.next.Version),
		slog.Int("entity_types", len(st.next.EntityTypes)),
		slog.Int("relation_types", len(st.next.RelationTypes)),
	)
}

// Discard abandons the staged schema without publishing it
func (st *StagedSchema) Discard() {
	if st.done {
		return
	}
	st.done = true
	st.store.writeMu.Unlock()
}

// Stage builds the next schema version from the current snapshot by
// applying fn to a deep copy, then persists the new version row using the
// given transaction handle. The in-memory snapshot is untouched until
// Publish, so a rolled-back transaction leaves no trace (both the schema
// row and whatever else the caller wrote in tx, such as an audit entry,
// become visible together or not at all).
func (s *SchemaStore) Stage(ctx context.Context, tx bun.IDB, fn func(next *OntologySchema) error) (*StagedSchema, error) {
	s.writeMu.Lock()

	s.mu.RLock()
	next := s.current.Clone()
	s.mu.RUnlock()

	if err := fn(next); err != nil {
		s.writeMu.Unlock()
		return nil, err
	}

	next.Version++
	next.CreatedAt = time.Now()

	record, err := NewSchemaRecord(next)
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("failed to persist schema version %d: %w", next.Version, err)
	}

	return &StagedSchema{store: s, next: next}, nil
}
