package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/apperror"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// MetadataKey is where the pushed schema snapshot lands in the graph
// store's metadata table.
const MetadataKey = "ontology_schema"

// SchemaPusher is the slice of the graph store the coordinator needs
type SchemaPusher interface {
	PutMetadata(ctx context.Context, key string, value any) error
	LatestChangeAt(ctx context.Context) (time.Time, error)
	Ping(ctx context.Context) error
}

// Status is the externally visible sync state
type Status struct {
	IsListening    bool       `json:"isListening"`
	SyncInProgress bool       `json:"syncInProgress"`
	LastSyncAt     *time.Time `json:"lastSyncAt,omitempty"`
	PendingChanges int        `json:"pendingChanges"`
	OntologySource string     `json:"ontologySource"`
	GraphConnected bool       `json:"graphConnected"`
}

// Coordinator pushes the declared schema into the graph store. Force-sync
// is single-flight: a second call while one is in flight is rejected
// immediately, never queued. The live-change listener is an independent
// poll loop and does not serialize with sync.
type Coordinator struct {
	store  *ontology.SchemaStore
	pusher SchemaPusher
	cfg    *config.Config
	log    *slog.Logger

	mu                sync.Mutex
	syncInProgress    bool
	isListening       bool
	lastSyncAt        *time.Time
	lastPushedVersion int
	graphConnected    bool

	stopListener context.CancelFunc
	listenerDone chan struct{}
}

// NewCoordinator creates a sync coordinator
func NewCoordinator(store *ontology.SchemaStore, pusher SchemaPusher, cfg *config.Config, log *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		pusher: pusher,
		cfg:    cfg,
		log:    log.With(logger.Scope("sync")),
	}
}

// Status returns the current sync state. Pending changes are the schema
// versions produced since the last successful push.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.store.Version() - c.lastPushedVersion
	if c.lastPushedVersion == 0 {
		// Nothing pushed yet: the whole current schema is pending.
		pending = c.store.Version()
	}
	if pending < 0 {
		pending = 0
	}

	return Status{
		IsListening:    c.isListening,
		SyncInProgress: c.syncInProgress,
		LastSyncAt:     c.lastSyncAt,
		PendingChanges: pending,
		OntologySource: "database",
		GraphConnected: c.graphConnected,
	}
}

// ForceSync pushes the full declared schema to the graph store. If a sync
// is already in flight it rejects immediately. The snapshot is taken
// before the push (read-then-send), so a concurrent schema mutation never
// produces a half-updated payload; lastSyncAt and graphConnected are
// updated on success and failure alike, and the in-progress flag cannot
// stay stuck. The push is not idempotent from the caller's view and is
// never retried automatically.
func (c *Coordinator) ForceSync(ctx context.Context) (Status, error) {
	c.mu.Lock()
	if c.syncInProgress {
		c.mu.Unlock()
		return c.Status(), apperror.ErrSyncInProgress
	}
	c.syncInProgress = true
	c.mu.Unlock()

	snapshot := c.store.Current()

	var err error
	func() {
		// Clear the flag on every exit path so a panic in the push cannot
		// leave syncInProgress stuck.
		defer func() {
			now := time.Now()
			c.mu.Lock()
			c.syncInProgress = false
			c.lastSyncAt = &now
			c.graphConnected = err == nil
			if err == nil {
				c.lastPushedVersion = snapshot.Version
			}
			c.mu.Unlock()
		}()
		err = c.pusher.PutMetadata(ctx, MetadataKey, snapshot)
	}()

	if err != nil {
		c.log.Error("force sync failed", logger.Error(err))
		return c.Status(), apperror.NewUpstream("failed to push schema to graph store", err)
	}

	c.log.Info("schema pushed to graph store", slog.Int("version", snapshot.Version))
	return c.Status(), nil
}

// StartListener begins the live-change poll loop. It is independent of
// force-sync and only tracks graph connectivity and change activity.
func (c *Coordinator) StartListener() {
	c.mu.Lock()
	if c.isListening {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.stopListener = cancel
	c.listenerDone = make(chan struct{})
	c.isListening = true
	c.mu.Unlock()

	interval := c.cfg.Sync.ListenInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	go func() {
		defer close(c.listenerDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.log.Info("change listener started", slog.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, err := c.pusher.LatestChangeAt(ctx)
				c.mu.Lock()
				c.graphConnected = err == nil
				c.mu.Unlock()
				if err != nil && ctx.Err() == nil {
					c.log.Warn("change poll failed", logger.Error(err))
				}
			}
		}
	}()
}

// StopListener stops the poll loop and waits for it to exit
func (c *Coordinator) StopListener() {
	c.mu.Lock()
	if !c.isListening {
		c.mu.Unlock()
		return
	}
	c.isListening = false
	cancel := c.stopListener
	done := c.listenerDone
	c.mu.Unlock()

	cancel()
	<-done
	c.log.Info("change listener stopped")
}
