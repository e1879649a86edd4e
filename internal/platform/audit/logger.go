package audit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/platform/metrics"
	"grievance/internal/platform/models"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Store is the append-only audit collection.
type Store interface {
	Insert(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, limit int) ([]*models.AuditLogEntry, error)
}

// Logger records privileged actions. Recording is best-effort: a failed
// append is logged and counted but never reaches the caller.
type Logger struct {
	store Store
	now   func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func NewLogger(store Store) *Logger {
	return &Logger{
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// newID returns a ULID; ids sort in the order they were issued.
func (l *Logger) newID(at time.Time) string {
	l.entropyMu.Lock()
	defer l.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), l.entropy).String()
}

func (l *Logger) Record(ctx context.Context, action, actorID string) {
	now := l.now()
	entry := &models.AuditLogEntry{
		ID:        l.newID(now),
		Action:    action,
		AdminID:   actorID,
		Timestamp: now,
	}

	if err := l.store.Insert(ctx, entry); err != nil {
		metrics.AuditFailures.Inc()
		log.Error().Err(err).Str("actor", actorID).Str("action", action).Msg("failed to record audit entry")
		return
	}
	log.Info().Str("audit_id", entry.ID).Str("actor", actorID).Str("action", action).Msg("audit")
}

// List returns entries newest first. limit is clamped to MaxListLimit and
// defaults to DefaultListLimit.
func (l *Logger) List(ctx context.Context, actor models.Actor, limit int) ([]*models.AuditLogEntry, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("only admins can view audit logs")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	entries, err := l.store.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Store("list audit logs", err)
	}
	return entries, nil
}
