package models

import (
	"errors"
	"time"
)

// ErrStale is returned by a guarded write whose record changed after it was
// read.
var ErrStale = errors.New("record changed since it was read")

// ErrDuplicate is returned when a write collides with a unique key.
var ErrDuplicate = errors.New("record already exists")

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Legacy two-state flag kept next to the workflow stage.
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
)

type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	EmailDomain string    `json:"emailDomain"`
	CreatedAt   time.Time `json:"createdAt"`
}

// User is the application profile of an identity-provider subject. OrgID is
// empty for admins.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	OrgID     string    `json:"orgId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Analysis struct {
	Summary  string `json:"summary"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Emotion  string `json:"emotion"`
}

type Complaint struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	OrgID       string    `json:"orgId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`

	AIAnalysis     *Analysis            `json:"aiAnalysis,omitempty"`
	WorkflowStatus string               `json:"workflowStatus,omitempty"`
	StatusHistory  map[string]time.Time `json:"statusHistory,omitempty"`

	AssignedManagerID      string     `json:"assignedManagerId,omitempty"`
	AssignedManagerName    string     `json:"assignedManagerName,omitempty"`
	UserSatisfactionRating int        `json:"userSatisfactionRating,omitempty"`
	ResolvedAt             *time.Time `json:"resolvedAt,omitempty"`
	LastUpdated            *time.Time `json:"lastUpdated,omitempty"`
}

// StageChange is a single stage write. The store inserts the history entry
// only if the stage has none yet. FromWorkflowStatus and FromStatus are the
// stored values the change was checked against; the store rejects the write
// with ErrStale when either has moved.
type StageChange struct {
	Stage       string
	At          time.Time
	Resolve     bool
	ManagerID   string
	ManagerName string

	FromWorkflowStatus string
	FromStatus         string
}

// ComplaintFilter narrows a listing. Empty fields do not filter.
type ComplaintFilter struct {
	UserID string
	OrgID  string
}

type AuditLogEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	AdminID   string    `json:"adminId"`
	Timestamp time.Time `json:"timestamp"`
}

// Actor is the authenticated caller every core operation acts on behalf of.
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   string
	OrgID  string
}
