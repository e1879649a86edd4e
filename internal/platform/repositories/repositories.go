package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"grievance/internal/platform/metrics"
	"grievance/internal/platform/models"
	"grievance/internal/platform/realtime"
)

// ErrNotFound is returned by updates that matched no row. Lookups return
// nil, nil instead.
var ErrNotFound = errors.New("record not found")

// Publisher receives a change after every successful write.
type Publisher interface {
	Publish(change realtime.Change)
}

type base struct {
	db  *sql.DB
	pub Publisher
}

func (b base) publish(collection, op, id string) {
	b.publishChange(realtime.Change{Collection: collection, Op: op, ID: id})
}

func (b base) publishChange(change realtime.Change) {
	if b.pub == nil {
		return
	}
	change.At = time.Now().UTC()
	b.pub.Publish(change)
}

// duplicate maps a unique or primary key violation to models.ErrDuplicate.
func duplicate(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}

func observe(op string, err error) error {
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, models.ErrStale) && !errors.Is(err, models.ErrDuplicate) {
		metrics.StoreErrors.WithLabelValues(op).Inc()
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMillis(n.Int64)
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}

type OrganizationRepository struct {
	base
}

func NewOrganizationRepository(db *sql.DB, pub Publisher) *OrganizationRepository {
	return &OrganizationRepository{base{db: db, pub: pub}}
}

const orgColumns = `id, name, email_domain, created_at`

func scanOrganization(row scanner) (*models.Organization, error) {
	org := &models.Organization{}
	var created int64
	if err := row.Scan(&org.ID, &org.Name, &org.EmailDomain, &created); err != nil {
		return nil, err
	}
	org.CreatedAt = fromMillis(created)
	return org, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, email_domain, created_at)
		VALUES (?, ?, ?, ?)
	`, org.ID, org.Name, org.EmailDomain, toMillis(org.CreatedAt))
	if err != nil {
		return observe("create_organization", duplicate(err))
	}
	r.publish(realtime.CollectionOrganizations, realtime.OpCreate, org.ID)
	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	org, err := scanOrganization(r.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, observe("get_organization", err)
	}
	return org, nil
}

func (r *OrganizationRepository) GetByDomain(ctx context.Context, domain string) (*models.Organization, error) {
	org, err := scanOrganization(r.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE email_domain = ?`, domain))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, observe("get_organization", err)
	}
	return org, nil
}

// List returns organizations in creation order.
func (r *OrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY created_at, rowid`)
	if err != nil {
		return nil, observe("list_organizations", err)
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, observe("list_organizations", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, observe("list_organizations", rows.Err())
}

type UserRepository struct {
	base
}

func NewUserRepository(db *sql.DB, pub Publisher) *UserRepository {
	return &UserRepository{base{db: db, pub: pub}}
}

const userColumns = `id, email, name, role, org_id, created_at`

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var orgID sql.NullString
	var created int64
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &orgID, &created); err != nil {
		return nil, err
	}
	user.OrgID = orgID.String
	user.CreatedAt = fromMillis(created)
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, org_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Name, user.Role, nullString(user.OrgID), toMillis(user.CreatedAt))
	if err != nil {
		return observe("create_user", duplicate(err))
	}
	r.publish(realtime.CollectionUsers, realtime.OpCreate, user.ID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, observe("get_user", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, rowid`)
	if err != nil {
		return nil, observe("list_users", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, observe("list_users", err)
		}
		users = append(users, user)
	}
	return users, observe("list_users", rows.Err())
}

func (r *UserRepository) UpdateRoleAndOrg(ctx context.Context, id, role, orgID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = ?, org_id = ? WHERE id = ?`, role, nullString(orgID), id)
	if err == nil {
		err = affected(res)
	}
	if err != nil {
		return observe("update_user", err)
	}
	r.publish(realtime.CollectionUsers, realtime.OpUpdate, id)
	return nil
}
