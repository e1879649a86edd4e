package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grievance/internal/platform/models"
	"grievance/internal/platform/realtime"
)

type ComplaintRepository struct {
	base
}

func NewComplaintRepository(db *sql.DB, pub Publisher) *ComplaintRepository {
	return &ComplaintRepository{base{db: db, pub: pub}}
}

const complaintColumns = `id, title, description, user_id, user_name, user_email, org_id, status, created_at,
	ai_analysis, workflow_status, status_history, assigned_manager_id, assigned_manager_name,
	user_satisfaction_rating, resolved_at, last_updated`

func scanComplaint(row scanner) (*models.Complaint, error) {
	c := &models.Complaint{}
	var (
		created     int64
		analysis    sql.NullString
		history     string
		resolvedAt  sql.NullInt64
		lastUpdated sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.UserID, &c.UserName, &c.UserEmail, &c.OrgID, &c.Status, &created,
		&analysis, &c.WorkflowStatus, &history, &c.AssignedManagerID, &c.AssignedManagerName,
		&c.UserSatisfactionRating, &resolvedAt, &lastUpdated)
	if err != nil {
		return nil, err
	}

	c.CreatedAt = fromMillis(created)
	c.ResolvedAt = timePtr(resolvedAt)
	c.LastUpdated = timePtr(lastUpdated)

	if analysis.Valid && analysis.String != "" {
		var a models.Analysis
		if err := json.Unmarshal([]byte(analysis.String), &a); err != nil {
			return nil, fmt.Errorf("decode ai_analysis of %s: %w", c.ID, err)
		}
		c.AIAnalysis = &a
	}

	c.StatusHistory, err = decodeHistory(history)
	if err != nil {
		return nil, fmt.Errorf("decode status_history of %s: %w", c.ID, err)
	}
	return c, nil
}

func encodeHistory(h map[string]time.Time) (string, error) {
	raw := make(map[string]int64, len(h))
	for stage, at := range h {
		raw[stage] = toMillis(at)
	}
	b, err := json.Marshal(raw)
	return string(b), err
}

func decodeHistory(s string) (map[string]time.Time, error) {
	if s == "" {
		return map[string]time.Time{}, nil
	}
	var raw map[string]int64
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	h := make(map[string]time.Time, len(raw))
	for stage, ms := range raw {
		h[stage] = fromMillis(ms)
	}
	return h, nil
}

// historyPath is the JSON path of a stage key; stage names contain '-'.
func historyPath(stage string) string {
	return `$."` + strings.ReplaceAll(stage, `"`, ``) + `"`
}

func encodeAnalysis(a *models.Analysis) (sql.NullString, error) {
	if a == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	analysis, err := encodeAnalysis(c.AIAnalysis)
	if err != nil {
		return err
	}
	history, err := encodeHistory(c.StatusHistory)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO complaints (`+complaintColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Title, c.Description, c.UserID, c.UserName, c.UserEmail, c.OrgID, c.Status, toMillis(c.CreatedAt),
		analysis, c.WorkflowStatus, history, c.AssignedManagerID, c.AssignedManagerName,
		c.UserSatisfactionRating, nullMillis(c.ResolvedAt), nullMillis(c.LastUpdated))
	if err != nil {
		return observe("create_complaint", err)
	}
	r.publishComplaint(realtime.OpCreate, complaintScope{id: c.ID, orgID: c.OrgID, userID: c.UserID})
	return nil
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := scanComplaint(r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, observe("get_complaint", err)
	}
	return c, nil
}

// List returns matching complaints oldest first.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints`
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.OrgID != "" {
		where = append(where, "org_id = ?")
		args = append(args, filter.OrgID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, observe("list_complaints", err)
	}
	defer rows.Close()

	list := []*models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, observe("list_complaints", err)
		}
		list = append(list, c)
	}
	return list, observe("list_complaints", rows.Err())
}

// complaintScope identifies whose complaint a write touched.
type complaintScope struct {
	id     string
	orgID  string
	userID string
}

func (r *ComplaintRepository) publishComplaint(op string, scope complaintScope) {
	r.publishChange(realtime.Change{
		Collection: realtime.CollectionComplaints,
		Op:         op,
		ID:         scope.id,
		OrgID:      scope.orgID,
		OwnerID:    scope.userID,
	})
}

// writeReturning runs a single-row write ending in RETURNING org_id, user_id.
// sql.ErrNoRows means no row matched.
func (r *ComplaintRepository) writeReturning(ctx context.Context, id, query string, args ...any) (complaintScope, error) {
	scope := complaintScope{id: id}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&scope.orgID, &scope.userID)
	return scope, err
}

// UpdateStage writes a stage change guarded by the workflow_status and status
// it was checked against. json_insert leaves an existing history entry
// untouched, and the assignee is only filled when empty.
func (r *ComplaintRepository) UpdateStage(ctx context.Context, id string, change models.StageChange) error {
	at := toMillis(change.At)
	scope, err := r.writeReturning(ctx, id, `
		UPDATE complaints SET
			workflow_status = ?,
			status_history = json_insert(status_history, ?, ?),
			last_updated = ?,
			status = CASE WHEN ? THEN 'resolved' ELSE status END,
			resolved_at = CASE WHEN ? THEN COALESCE(resolved_at, ?) ELSE resolved_at END,
			assigned_manager_id = CASE WHEN ? <> '' AND assigned_manager_id = '' THEN ? ELSE assigned_manager_id END,
			assigned_manager_name = CASE WHEN ? <> '' AND assigned_manager_id = '' THEN ? ELSE assigned_manager_name END
		WHERE id = ? AND workflow_status = ? AND status = ?
		RETURNING org_id, user_id
	`, change.Stage,
		historyPath(change.Stage), at,
		at,
		change.Resolve,
		change.Resolve, at,
		change.ManagerID, change.ManagerID,
		change.ManagerID, change.ManagerName,
		id, change.FromWorkflowStatus, change.FromStatus)
	if err == sql.ErrNoRows {
		err = r.missingOrStale(ctx, id)
	}
	if err != nil {
		return observe("update_complaint_stage", err)
	}
	r.publishComplaint(realtime.OpUpdate, scope)
	return nil
}

// missingOrStale explains why a guarded update matched no row.
func (r *ComplaintRepository) missingOrStale(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM complaints WHERE id = ?`, id).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return ErrNotFound
	case err != nil:
		return err
	}
	return models.ErrStale
}

// UpdateAnalysis overwrites the analysis and records the analyzed stage if
// it was never reached.
func (r *ComplaintRepository) UpdateAnalysis(ctx context.Context, id string, analysis models.Analysis, at time.Time) error {
	encoded, err := encodeAnalysis(&analysis)
	if err != nil {
		return err
	}
	scope, err := r.writeReturning(ctx, id, `
		UPDATE complaints SET
			ai_analysis = ?,
			status_history = json_insert(status_history, '$.analyzed', ?),
			last_updated = ?
		WHERE id = ?
		RETURNING org_id, user_id
	`, encoded, toMillis(at), toMillis(at), id)
	if err == sql.ErrNoRows {
		err = ErrNotFound
	}
	if err != nil {
		return observe("update_complaint_analysis", err)
	}
	r.publishComplaint(realtime.OpUpdate, scope)
	return nil
}

// SetRating does not touch last_updated; a rating is not workflow activity.
func (r *ComplaintRepository) SetRating(ctx context.Context, id string, rating int) error {
	scope, err := r.writeReturning(ctx, id,
		`UPDATE complaints SET user_satisfaction_rating = ? WHERE id = ? RETURNING org_id, user_id`, rating, id)
	if err == sql.ErrNoRows {
		err = ErrNotFound
	}
	if err != nil {
		return observe("rate_complaint", err)
	}
	r.publishComplaint(realtime.OpUpdate, scope)
	return nil
}

func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	scope, err := r.writeReturning(ctx, id, `DELETE FROM complaints WHERE id = ? RETURNING org_id, user_id`, id)
	if err == sql.ErrNoRows {
		err = ErrNotFound
	}
	if err != nil {
		return observe("delete_complaint", err)
	}
	r.publishComplaint(realtime.OpDelete, scope)
	return nil
}
