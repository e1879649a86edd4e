package repositories

import (
	"context"
	"database/sql"

	"grievance/internal/platform/models"
	"grievance/internal/platform/realtime"
)

type AuditLogRepository struct {
	base
}

func NewAuditLogRepository(db *sql.DB, pub Publisher) *AuditLogRepository {
	return &AuditLogRepository{base{db: db, pub: pub}}
}

func (r *AuditLogRepository) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, action, admin_id, timestamp)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.Action, entry.AdminID, toMillis(entry.Timestamp))
	if err != nil {
		return observe("insert_audit_log", err)
	}
	r.publish(realtime.CollectionAuditLogs, realtime.OpCreate, entry.ID)
	return nil
}

// List returns the newest entries first. Ids are ULIDs, so they break ties
// between entries written in the same millisecond.
func (r *AuditLogRepository) List(ctx context.Context, limit int) ([]*models.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, admin_id, timestamp
		FROM audit_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, observe("list_audit_logs", err)
	}
	defer rows.Close()

	entries := []*models.AuditLogEntry{}
	for rows.Next() {
		e := &models.AuditLogEntry{}
		var ts int64
		if err := rows.Scan(&e.ID, &e.Action, &e.AdminID, &ts); err != nil {
			return nil, observe("list_audit_logs", err)
		}
		e.Timestamp = fromMillis(ts)
		entries = append(entries, e)
	}
	return entries, observe("list_audit_logs", rows.Err())
}
