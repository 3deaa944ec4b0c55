package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ontoscope/ontoscope/pkg/backoff"
)

// Repository provides read access to the observed graph instance store.
// All reads are idempotent and retried with a small backoff budget; the
// single write (PutMetadata) is never retried.
type Repository struct {
	db bun.IDB
}

// NewRepository creates a new graph repository
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// ObjectQuery filters object listings for the canvas
type ObjectQuery struct {
	Types     []string
	Community *int
	Limit     int
}

// RelationshipInstance is a relationship joined with its endpoint types,
// used by compliance validation.
type RelationshipInstance struct {
	ID         string          `bun:"id"`
	Type       string          `bun:"type"`
	SrcType    string          `bun:"src_type"`
	DstType    string          `bun:"dst_type"`
	Properties json.RawMessage `bun:"properties"`
}

// PropertyMap decodes the jsonb properties column.
func (ri *RelationshipInstance) PropertyMap() map[string]any {
	if len(ri.Properties) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(ri.Properties, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// ObjectCountsByType returns live object counts grouped by type
func (r *Repository) ObjectCountsByType(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Type  string `bun:"type"`
		Count int    `bun:"count"`
	}

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		rows = rows[:0]
		_, err := r.db.NewRaw(`
			SELECT type, COUNT(*) AS count
			FROM kb.graph_objects
			WHERE deleted_at IS NULL
			GROUP BY type
		`).Exec(ctx, &rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count objects by type: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// RelationshipCountsByType returns live relationship counts grouped by type
func (r *Repository) RelationshipCountsByType(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Type  string `bun:"type"`
		Count int    `bun:"count"`
	}

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		rows = rows[:0]
		_, err := r.db.NewRaw(`
			SELECT type, COUNT(*) AS count
			FROM kb.graph_relationships
			WHERE deleted_at IS NULL
			GROUP BY type
		`).Exec(ctx, &rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count relationships by type: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// EndpointTriples returns observed (source type, relationship type, target
// type) combinations with occurrence counts, used for ontology extraction.
func (r *Repository) EndpointTriples(ctx context.Context) ([]EndpointTriple, error) {
	var rows []EndpointTriple

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		rows = rows[:0]
		_, err := r.db.NewRaw(`
			SELECT src.type AS src_type, gr.type AS rel_type, dst.type AS dst_type, COUNT(*) AS count
			FROM kb.graph_relationships gr
			JOIN kb.graph_objects src ON src.id = gr.src_id
			JOIN kb.graph_objects dst ON dst.id = gr.dst_id
			WHERE gr.deleted_at IS NULL
				AND src.deleted_at IS NULL
				AND dst.deleted_at IS NULL
			GROUP BY src.type, gr.type, dst.type
			ORDER BY count DESC
		`).Exec(ctx, &rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoint triples: %w", err)
	}

	return rows, nil
}

// ScanObjects returns live objects for compliance validation. limit <= 0
// scans everything.
func (r *Repository) ScanObjects(ctx context.Context, limit int) ([]GraphObject, error) {
	var objects []GraphObject

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		objects = objects[:0]
		q := r.db.NewSelect().
			Model(&objects).
			Where("deleted_at IS NULL").
			Order("created_at DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan objects: %w", err)
	}

	return objects, nil
}

// ScanRelationships returns live relationships joined with endpoint types
// for compliance validation. limit <= 0 scans everything.
func (r *Repository) ScanRelationships(ctx context.Context, limit int) ([]RelationshipInstance, error) {
	query := `
		SELECT gr.id, gr.type, src.type AS src_type, dst.type AS dst_type, gr.properties
		FROM kb.graph_relationships gr
		JOIN kb.graph_objects src ON src.id = gr.src_id
		JOIN kb.graph_objects dst ON dst.id = gr.dst_id
		WHERE gr.deleted_at IS NULL
			AND src.deleted_at IS NULL
			AND dst.deleted_at IS NULL
		ORDER BY gr.created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []RelationshipInstance
	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		rows = rows[:0]
		_, err := r.db.NewRaw(query, args...).Exec(ctx, &rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan relationships: %w", err)
	}

	return rows, nil
}

// ListObjects returns live objects filtered for the canvas
func (r *Repository) ListObjects(ctx context.Context, query ObjectQuery) ([]GraphObject, error) {
	var objects []GraphObject

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		objects = objects[:0]
		q := r.db.NewSelect().
			Model(&objects).
			Where("deleted_at IS NULL")
		if len(query.Types) > 0 {
			q = q.Where("type IN (?)", bun.In(query.Types))
		}
		if query.Community != nil {
			q = q.Where("community = ?", *query.Community)
		}
		q = q.Order("created_at DESC")
		if query.Limit > 0 {
			q = q.Limit(query.Limit)
		}
		return q.Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	return objects, nil
}

// ListRelationshipsAmong returns live relationships whose endpoints are both
// in the given object id set.
func (r *Repository) ListRelationshipsAmong(ctx context.Context, objectIDs []string) ([]GraphRelationship, error) {
	if len(objectIDs) == 0 {
		return []GraphRelationship{}, nil
	}

	var rels []GraphRelationship
	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		rels = rels[:0]
		return r.db.NewSelect().
			Model(&rels).
			Where("deleted_at IS NULL").
			Where("src_id IN (?)", bun.In(objectIDs)).
			Where("dst_id IN (?)", bun.In(objectIDs)).
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}

	return rels, nil
}

// LatestChangeAt returns the most recent object update timestamp. The sync
// coordinator polls this to detect live changes.
func (r *Repository) LatestChangeAt(ctx context.Context) (time.Time, error) {
	var latest sql.NullTime

	err := backoff.Retry(ctx, backoff.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.NewRaw(`
			SELECT MAX(updated_at) FROM kb.graph_objects WHERE deleted_at IS NULL
		`).Exec(ctx, &latest)
		return err
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("failed to query latest change: %w", err)
	}

	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

// PutMetadata upserts a metadata row. This is the sync push target and is
// deliberately not retried.
func (r *Repository) PutMetadata(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata value: %w", err)
	}

	meta := &GraphMetadata{
		Key:       key,
		Value:     raw,
		UpdatedAt: time.Now(),
	}

	_, err = r.db.NewInsert().
		Model(meta).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}

	return nil
}

// Ping verifies the instance store is reachable
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	_, err := r.db.NewRaw("SELECT 1").Exec(ctx, &one)
	return err
}
