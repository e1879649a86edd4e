package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/platform/models"
)

type fakeSource struct {
	complaints []*models.Complaint
	orgs       []*models.Organization
	users      []*models.User
	err        error
	lastFilter models.ComplaintFilter
}

func (f *fakeSource) List(ctx context.Context, filter models.ComplaintFilter) ([]*models.Complaint, error) {
	f.lastFilter = filter
	return f.complaints, f.err
}

type fakeOrgs struct{ src *fakeSource }

func (f fakeOrgs) List(ctx context.Context) ([]*models.Organization, error) { return f.src.orgs, f.src.err }

type fakeUsers struct{ src *fakeSource }

func (f fakeUsers) List(ctx context.Context) ([]*models.User, error) { return f.src.users, f.src.err }

func TestBuildOverview(t *testing.T) {
	day1 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	orgs := []*models.Organization{{ID: "org_a", Name: "Acme"}, {ID: "org_b", Name: "Beta"}}
	complaints := []*models.Complaint{
		{OrgID: "org_a", CreatedAt: day2, AIAnalysis: &models.Analysis{Priority: "High"}},
		{OrgID: "org_a", CreatedAt: day1, WorkflowStatus: "resolved", AIAnalysis: &models.Analysis{Priority: "Low"}},
		{OrgID: "org_x", CreatedAt: day1, Status: models.StatusOpen},
	}

	ov := BuildOverview(orgs, complaints)

	assert.Equal(t, Totals{Organizations: 2, Complaints: 3, Analyzed: 2, Resolved: 1, Pending: 2}, ov.Totals)
	assert.Equal(t, []OrgCount{
		{OrgID: "org_a", Name: "Acme", Total: 2, Resolved: 1},
		{OrgID: "org_b", Name: "Beta"},
	}, ov.ByOrg)
	assert.Equal(t, map[string]int{"High": 1, "Low": 1}, ov.ByPriority)
	assert.Equal(t, []DayCount{{"2025-05-01", 2}, {"2025-05-02", 1}}, ov.ByDay)
}

func TestWorkflowInsights(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	t0 := now.Add(-72 * time.Hour)
	recent := now.Add(-time.Hour)

	complaints := []*models.Complaint{
		{
			CreatedAt: t0,
			StatusHistory: map[string]time.Time{
				"submitted": t0,
				"analyzed":  t0,
				"assigned":  t0.Add(4 * time.Hour),
			},
		},
		{
			CreatedAt:   t0,
			LastUpdated: &recent,
			StatusHistory: map[string]time.Time{
				"submitted": t0,
				"analyzed":  t0,
				"assigned":  t0.Add(2 * time.Hour),
			},
		},
		{
			CreatedAt:      t0,
			WorkflowStatus: "resolved",
			StatusHistory: map[string]time.Time{
				"in-progress": t0,
				"resolved":    t0.Add(20 * time.Hour),
			},
		},
	}

	r := WorkflowInsights(complaints, now, 0)

	require.Len(t, r.Delays, 3)
	assert.Equal(t, StageDelay{Stage: "analyzed", AvgHours: 0, Samples: 2}, r.Delays[0])
	assert.Equal(t, StageDelay{Stage: "assigned", AvgHours: 3, Samples: 2}, r.Delays[1])
	assert.Equal(t, StageDelay{Stage: "resolved", AvgHours: 20, Samples: 1}, r.Delays[2])
	assert.Equal(t, "resolved", r.Bottleneck)
	assert.Equal(t, 1, r.Stuck)
	assert.Equal(t, 1, r.Resolved)
	assert.Equal(t, 33, r.ResolutionRate)

	r = WorkflowInsights(complaints, now, 100*time.Hour)
	assert.Equal(t, 0, r.Stuck)
}

func TestSnapshotCache(t *testing.T) {
	cache := NewSnapshotCache(time.Minute)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	cache.Set("admin", &Snapshot{GeneratedAt: clock, Stale: true})

	got, ok := cache.Get("admin")
	require.True(t, ok)
	assert.False(t, got.Stale)

	got.Stale = true
	again, _ := cache.Get("admin")
	assert.False(t, again.Stale, "Get returns a copy")

	clock = clock.Add(2 * time.Minute)
	_, ok = cache.Get("admin")
	assert.False(t, ok, "expired entries are dropped")

	_, ok = cache.Get("org:missing")
	assert.False(t, ok)
}

func TestService_Admin(t *testing.T) {
	src := &fakeSource{
		complaints: []*models.Complaint{{OrgID: "org_a", Status: models.StatusOpen}},
		orgs:       []*models.Organization{{ID: "org_a", Name: "Acme"}},
		users:      []*models.User{{ID: "m1", Role: models.RoleManager, OrgID: "org_a"}},
	}
	svc := NewService(src, fakeOrgs{src}, fakeUsers{src}, NewSnapshotCache(time.Hour), 0)
	admin := models.Actor{UserID: "a1", Role: models.RoleAdmin}
	ctx := context.Background()

	snap, err := svc.Admin(ctx, admin)
	require.NoError(t, err)
	assert.False(t, snap.Stale)
	require.NotNil(t, snap.Overview)
	assert.Equal(t, 1, snap.Overview.Totals.Complaints)
	require.Len(t, snap.Scorecards, 1)
	assert.Len(t, snap.Insights, 1)

	src.err = errors.New("database is locked")
	stale, err := svc.Admin(ctx, admin)
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Equal(t, snap.GeneratedAt, stale.GeneratedAt)

	_, err = svc.Admin(ctx, models.Actor{Role: models.RoleManager, OrgID: "org_a"})
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
}

func TestService_OrganizationStoreError(t *testing.T) {
	src := &fakeSource{err: errors.New("disk I/O error")}
	svc := NewService(src, fakeOrgs{src}, fakeUsers{src}, NewSnapshotCache(time.Hour), 0)
	mgr := models.Actor{UserID: "m1", Role: models.RoleManager, OrgID: "org_a"}

	_, err := svc.Organization(context.Background(), mgr)
	assert.True(t, apperrors.Is(err, apperrors.KindStore), "no cached snapshot means a store error")

	src.err = nil
	snap, err := svc.Organization(context.Background(), mgr)
	require.NoError(t, err)
	assert.Equal(t, "org_a", src.lastFilter.OrgID)
	assert.NotNil(t, snap.Workflow)
}

func TestService_RefreshWarmsCache(t *testing.T) {
	src := &fakeSource{
		complaints: []*models.Complaint{{OrgID: "org_a", Status: models.StatusOpen}},
		orgs:       []*models.Organization{{ID: "org_a", Name: "Acme"}},
	}
	cache := NewSnapshotCache(time.Hour)
	svc := NewService(src, fakeOrgs{src}, fakeUsers{src}, cache, 0)

	require.NoError(t, svc.Refresh(context.Background()))
	snap, ok := cache.Get(adminScope)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Overview.Totals.Organizations)

	src.err = errors.New("database is locked")
	err := svc.Refresh(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.KindStore))

	stale, err := svc.Admin(context.Background(), models.Actor{UserID: "a1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, stale.Stale, "a refreshed snapshot backs the fallback")
}
