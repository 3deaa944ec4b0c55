package ontology

import (
	"context"

	"github.com/uptrace/bun"
)

// ChangeEntry describes one applied schema mutation for the append-only
// change ledger.
type ChangeEntry struct {
	ChangeType    string `json:"changeType"` // add | update | remove | merge
	TargetType    string `json:"targetType"` // entity | relation | schema
	TargetName    string `json:"targetName"`
	OldDefinition any    `json:"oldDefinition,omitempty"`
	NewDefinition any    `json:"newDefinition,omitempty"`
	Diff          any    `json:"diff,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Source        string `json:"source,omitempty"`
	ChangedBy     string `json:"changedBy,omitempty"`
}

// ChangeLogger appends entries to the change ledger. Implementations must
// write through the given transaction handle so a schema mutation and its
// audit entry become visible together or not at all.
type ChangeLogger interface {
	LogChange(ctx context.Context, tx bun.IDB, entry ChangeEntry) error
}
