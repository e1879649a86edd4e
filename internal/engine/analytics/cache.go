package analytics

import (
	"sync"
	"time"
)

// SnapshotCache keeps the last snapshot computed for each dashboard scope so
// it can still be served while the store is unreachable.
type SnapshotCache struct {
	store sync.Map // map[scope]*Snapshot
	ttl   time.Duration
	now   func() time.Time
}

// NewSnapshotCache expires entries after ttl. A ttl of zero keeps them until
// overwritten.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, now: time.Now}
}

func (c *SnapshotCache) Get(scope string) (*Snapshot, bool) {
	val, ok := c.store.Load(scope)
	if !ok {
		return nil, false
	}

	snap := val.(*Snapshot)
	if c.ttl > 0 && c.now().Sub(snap.GeneratedAt) > c.ttl {
		c.store.Delete(scope)
		return nil, false
	}

	cp := *snap
	return &cp, true
}

func (c *SnapshotCache) Set(scope string, snap *Snapshot) {
	cp := *snap
	cp.Stale = false
	c.store.Store(scope, &cp)
}
