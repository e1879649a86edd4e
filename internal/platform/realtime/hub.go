// Package realtime fans store change notifications out to subscribers.
package realtime

import (
	"sync"
	"time"

	"grievance/internal/platform/metrics"
)

const (
	CollectionOrganizations = "organizations"
	CollectionUsers         = "users"
	CollectionComplaints    = "complaints"
	CollectionAuditLogs     = "audit_logs"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change describes one successful write. OrgID and OwnerID scope complaint
// changes to the organization and submitter they belong to.
type Change struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	OrgID      string    `json:"orgId,omitempty"`
	OwnerID    string    `json:"ownerId,omitempty"`
	At         time.Time `json:"at"`
}

const bufferSize = 16

type subscriber struct {
	collection string
	ch         chan Change
	done       chan struct{}
}

// Hub delivers changes to every subscriber of the matching collection. Each
// subscriber has its own goroutine, so a slow callback never blocks writers
// or other subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscription is returned by Subscribe. Unsubscribe is safe to call more
// than once.
type Subscription struct {
	hub  *Hub
	id   int
	once sync.Once
}

// Subscribe calls onChange, in publish order, for each change to collection.
// An empty collection receives every change.
func (h *Hub) Subscribe(collection string, onChange func(Change)) *Subscription {
	sub := &subscriber{
		collection: collection,
		ch:         make(chan Change, bufferSize),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	go func() {
		defer close(sub.done)
		for change := range sub.ch {
			onChange(change)
		}
	}()

	return &Subscription{hub: h, id: id}
}

// Unsubscribe stops delivery and waits for an in-flight callback to return.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		sub, ok := s.hub.subs[s.id]
		delete(s.hub.subs, s.id)
		if ok {
			close(sub.ch)
		}
		s.hub.mu.Unlock()

		if ok {
			<-sub.done
		}
	})
}

// Publish never blocks. When a subscriber's buffer is full the change is
// dropped for that subscriber; the pending ones already signal a refresh.
func (h *Hub) Publish(change Change) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.collection != "" && sub.collection != change.Collection {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			metrics.DroppedNotifications.WithLabelValues(change.Collection).Inc()
		}
	}
}

// Subscribers reports the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
