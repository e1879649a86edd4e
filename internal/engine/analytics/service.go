package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/platform/metrics"
	"grievance/internal/platform/models"
)

type ComplaintSource interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]*models.Complaint, error)
}

type OrganizationSource interface {
	List(ctx context.Context) ([]*models.Organization, error)
}

type UserSource interface {
	List(ctx context.Context) ([]*models.User, error)
}

// Snapshot is one dashboard's worth of derived data. Stale is set when it
// was served from cache because the store could not be read.
type Snapshot struct {
	Insights    []Insight       `json:"insights,omitempty"`
	Scorecards  []Scorecard     `json:"scorecards,omitempty"`
	Overview    *Overview       `json:"overview,omitempty"`
	Workflow    *WorkflowReport `json:"workflow,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Stale       bool            `json:"stale"`
}

type Service struct {
	complaints ComplaintSource
	orgs       OrganizationSource
	users      UserSource
	cache      *SnapshotCache
	stuckAfter time.Duration
	now        func() time.Time
}

func NewService(complaints ComplaintSource, orgs OrganizationSource, users UserSource, cache *SnapshotCache, stuckAfter time.Duration) *Service {
	return &Service{
		complaints: complaints,
		orgs:       orgs,
		users:      users,
		cache:      cache,
		stuckAfter: stuckAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

const adminScope = "admin"

// Admin computes the cross-organization dashboard.
func (s *Service) Admin(ctx context.Context, actor models.Actor) (*Snapshot, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Forbidden("only admins can view platform analytics")
	}

	snap, err := s.buildAdmin(ctx)
	if err != nil {
		return s.fallback(adminScope, "build admin snapshot", err)
	}
	s.cache.Set(adminScope, snap)
	return snap, nil
}

// Organization computes the manager dashboard for the actor's organization.
func (s *Service) Organization(ctx context.Context, actor models.Actor) (*Snapshot, error) {
	if actor.Role != models.RoleManager {
		return nil, apperrors.Forbidden("only managers can view organization analytics")
	}
	if actor.OrgID == "" {
		return nil, apperrors.Forbidden("no organization found")
	}

	scope := "org:" + actor.OrgID
	complaints, err := s.complaints.List(ctx, models.ComplaintFilter{OrgID: actor.OrgID})
	if err != nil {
		return s.fallback(scope, "list complaints", err)
	}

	now := s.now()
	report := WorkflowInsights(complaints, now, s.stuckAfter)
	snap := &Snapshot{
		Insights:    GenerateInsights(complaints),
		Workflow:    &report,
		GeneratedAt: now,
	}
	s.cache.Set(scope, snap)
	return snap, nil
}

// Refresh rebuilds the platform snapshot into the cache. It is driven by
// change notifications rather than a caller.
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := s.buildAdmin(ctx)
	if err != nil {
		return apperrors.Store("refresh admin snapshot", err)
	}
	s.cache.Set(adminScope, snap)
	return nil
}

func (s *Service) buildAdmin(ctx context.Context) (*Snapshot, error) {
	complaints, err := s.complaints.List(ctx, models.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	overview := BuildOverview(orgs, complaints)
	return &Snapshot{
		Insights:    GenerateInsights(complaints),
		Scorecards:  Scorecards(users, orgs, complaints),
		Overview:    &overview,
		GeneratedAt: s.now(),
	}, nil
}

func (s *Service) fallback(scope, op string, err error) (*Snapshot, error) {
	if snap, ok := s.cache.Get(scope); ok {
		log.Warn().Err(err).Str("scope", scope).Time("generated_at", snap.GeneratedAt).Msg("serving stale analytics snapshot")
		metrics.StaleSnapshots.Inc()
		snap.Stale = true
		return snap, nil
	}
	return nil, apperrors.Store(op, err)
}
