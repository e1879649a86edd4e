package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/platform/realtime"
)

func TestSnapshotRefresher(t *testing.T) {
	hub := realtime.NewHub()
	var calls atomic.Int32
	refresh := func(context.Context) error {
		calls.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w := NewSnapshotRefresher(hub, refresh, 100*time.Millisecond)
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond, "initial refresh")
	require.Eventually(t, func() bool { return hub.Subscribers() == 3 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		hub.Publish(realtime.Change{Collection: realtime.CollectionComplaints, Op: realtime.OpUpdate, ID: "c1"})
	}
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load(), "a burst collapses into one refresh")

	hub.Publish(realtime.Change{Collection: realtime.CollectionAuditLogs, Op: realtime.OpCreate, ID: "a1"})
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load(), "audit entries do not affect analytics")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
	assert.Equal(t, 0, hub.Subscribers())
}

func TestSnapshotRefresher_FailureKeepsRunning(t *testing.T) {
	hub := realtime.NewHub()
	var calls atomic.Int32
	refresh := func(context.Context) error {
		calls.Add(1)
		return errors.New("database is locked")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewSnapshotRefresher(hub, refresh, 10*time.Millisecond).Run(ctx)

	require.Eventually(t, func() bool { return hub.Subscribers() == 3 }, time.Second, 5*time.Millisecond)
	hub.Publish(realtime.Change{Collection: realtime.CollectionUsers, Op: realtime.OpCreate, ID: "u1"})
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
