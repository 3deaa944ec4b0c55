package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/apperror"
)

type fakePusher struct {
	putErr   error
	putCalls atomic.Int32
	block    chan struct{} // when set, PutMetadata blocks until closed
}

func (f *fakePusher) PutMetadata(ctx context.Context, key string, value any) error {
	f.putCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.putErr
}

func (f *fakePusher) LatestChangeAt(ctx context.Context) (time.Time, error) {
	return time.Now(), nil
}

func (f *fakePusher) Ping(ctx context.Context) error { return nil }

func testCoordinator(pusher SchemaPusher) *Coordinator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ontology.NewSchemaStore(nil, log)
	cfg := &config.Config{}
	cfg.Sync.ListenInterval = 10 * time.Millisecond
	return NewCoordinator(store, pusher, cfg, log)
}

func TestForceSync_Success(t *testing.T) {
	pusher := &fakePusher{}
	c := testCoordinator(pusher)

	status, err := c.ForceSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), pusher.putCalls.Load())
	assert.False(t, status.SyncInProgress)
	assert.True(t, status.GraphConnected)
	assert.NotNil(t, status.LastSyncAt)
	assert.Zero(t, status.PendingChanges)
}

func TestForceSync_SingleFlight(t *testing.T) {
	pusher := &fakePusher{block: make(chan struct{})}
	c := testCoordinator(pusher)

	firstDone := make(chan error, 1)
	go func() {
		_, err := c.ForceSync(context.Background())
		firstDone <- err
	}()

	// Wait for the first sync to take the flag
	require.Eventually(t, func() bool {
		return c.Status().SyncInProgress
	}, time.Second, time.Millisecond)

	// Second call rejects immediately, no queueing
	_, err := c.ForceSync(context.Background())
	assert.ErrorIs(t, err, apperror.ErrSyncInProgress)
	assert.Equal(t, int32(1), pusher.putCalls.Load())

	close(pusher.block)
	require.NoError(t, <-firstDone)
	assert.False(t, c.Status().SyncInProgress)
}

func TestForceSync_FailureClearsFlagAndRecordsAttempt(t *testing.T) {
	pusher := &fakePusher{putErr: errors.New("graph store down")}
	c := testCoordinator(pusher)

	_, err := c.ForceSync(context.Background())
	require.Error(t, err)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "upstream_error", appErr.Code)

	status := c.Status()
	assert.False(t, status.SyncInProgress)
	assert.False(t, status.GraphConnected)
	assert.NotNil(t, status.LastSyncAt)

	// A new sync may start right away
	pusher.putErr = nil
	_, err = c.ForceSync(context.Background())
	assert.NoError(t, err)
	assert.True(t, c.Status().GraphConnected)
}

func TestListener_IndependentOfSync(t *testing.T) {
	pusher := &fakePusher{block: make(chan struct{})}
	c := testCoordinator(pusher)

	c.StartListener()
	defer c.StopListener()
	assert.True(t, c.Status().IsListening)

	go c.ForceSync(context.Background())
	require.Eventually(t, func() bool {
		return c.Status().SyncInProgress
	}, time.Second, time.Millisecond)

	// Listening state is unaffected by an in-flight sync
	assert.True(t, c.Status().IsListening)
	close(pusher.block)
}

func TestListener_StartStop(t *testing.T) {
	c := testCoordinator(&fakePusher{})

	assert.False(t, c.Status().IsListening)
	c.StartListener()
	assert.True(t, c.Status().IsListening)

	// Idempotent start
	c.StartListener()

	c.StopListener()
	assert.False(t, c.Status().IsListening)

	// Idempotent stop
	c.StopListener()
}
