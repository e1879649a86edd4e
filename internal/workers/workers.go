// Package workers holds background jobs that run next to the API server.
package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"grievance/internal/platform/realtime"
)

// Subscriber is the part of the realtime hub the refresher needs.
type Subscriber interface {
	Subscribe(collection string, onChange func(realtime.Change)) *realtime.Subscription
}

// SnapshotRefresher recomputes derived analytics after writes. Changes
// arriving within the debounce window collapse into one refresh.
type SnapshotRefresher struct {
	hub         Subscriber
	refresh     func(ctx context.Context) error
	debounce    time.Duration
	collections []string
}

func NewSnapshotRefresher(hub Subscriber, refresh func(ctx context.Context) error, debounce time.Duration) *SnapshotRefresher {
	return &SnapshotRefresher{
		hub:      hub,
		refresh:  refresh,
		debounce: debounce,
		collections: []string{
			realtime.CollectionComplaints,
			realtime.CollectionOrganizations,
			realtime.CollectionUsers,
		},
	}
}

// Run refreshes once at start, then after every burst of changes, until ctx
// is done.
func (w *SnapshotRefresher) Run(ctx context.Context) {
	pending := make(chan struct{}, 1)
	notify := func(realtime.Change) {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	for _, c := range w.collections {
		sub := w.hub.Subscribe(c, notify)
		defer sub.Unsubscribe()
	}

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-pending:
		}

		timer := time.NewTimer(w.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		// changes seen during the wait are covered by this refresh
		select {
		case <-pending:
		default:
		}
		w.run(ctx)
	}
}

func (w *SnapshotRefresher) run(ctx context.Context) {
	start := time.Now()
	if err := w.refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Worker: snapshot refresh failed")
		return
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Worker: analytics snapshot refreshed")
}
