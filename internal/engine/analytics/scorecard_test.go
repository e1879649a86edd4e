package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/platform/models"
)

func TestScorecards(t *testing.T) {
	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	resolvedAt := created.Add(10 * time.Hour)
	legacyResolved := created.Add(5 * time.Hour)

	users := []*models.User{
		{ID: "m1", Email: "mo@acme.com", Role: models.RoleManager, OrgID: "org_a"},
		{ID: "m2", Email: "lee@acme.com", Role: models.RoleManager, OrgID: "org_a"},
		{ID: "m3", Email: "new@nowhere.io", Role: models.RoleManager},
		{ID: "u1", Email: "kim@acme.com", Role: models.RoleUser, OrgID: "org_a"},
	}
	orgs := []*models.Organization{{ID: "org_a", Name: "Acme"}}

	complaints := []*models.Complaint{
		{OrgID: "org_a", CreatedAt: created, WorkflowStatus: "resolved", StatusHistory: map[string]time.Time{"resolved": resolvedAt}},
		{OrgID: "org_a", CreatedAt: created, Status: models.StatusResolved, WorkflowStatus: "resolved", ResolvedAt: &legacyResolved},
		{OrgID: "org_a", CreatedAt: created, WorkflowStatus: "in-progress"},
		{OrgID: "org_a", CreatedAt: created, AIAnalysis: &models.Analysis{}},
		{OrgID: "org_b", AssignedManagerID: "m3", CreatedAt: created},
	}

	cards := Scorecards(users, orgs, complaints)
	require.Len(t, cards, 3)

	// m1 and m2 both count the whole org.
	for _, card := range cards[:2] {
		assert.Equal(t, 4, card.Total)
		assert.Equal(t, 2, card.Resolved)
		assert.Equal(t, 1, card.InProgress)
		assert.Equal(t, 1, card.Pending)
		assert.Equal(t, 50, card.ResolutionRate)
		assert.Equal(t, "good", card.Status)
		assert.Equal(t, "7.5h", card.AvgTime)
		assert.Equal(t, "Acme", card.OrgName)
	}
	assert.Equal(t, "m1", cards[0].ManagerID, "stable order for equal resolved counts")

	last := cards[2]
	assert.Equal(t, "m3", last.ManagerID)
	assert.Equal(t, "Unassigned", last.OrgName)
	assert.Equal(t, 1, last.Total)
	assert.Equal(t, 0, last.ResolutionRate)
	assert.Equal(t, "new", last.Status)
	assert.Equal(t, "-", last.AvgTime)
}

func TestScorecards_SortedByResolved(t *testing.T) {
	users := []*models.User{
		{ID: "m1", Role: models.RoleManager},
		{ID: "m2", Role: models.RoleManager},
	}
	complaints := []*models.Complaint{
		{AssignedManagerID: "m2", WorkflowStatus: "resolved"},
		{AssignedManagerID: "m1"},
	}

	cards := Scorecards(users, nil, complaints)
	require.Len(t, cards, 2)
	assert.Equal(t, "m2", cards[0].ManagerID)
	assert.Equal(t, "excellent", cards[0].Status)
	assert.Equal(t, "-", cards[0].AvgTime, "resolved without timestamps has no average")
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{100, "excellent"},
		{80, "excellent"},
		{79.6, "good"},
		{50, "good"},
		{49.9, "needs-improvement"},
		{0.1, "needs-improvement"},
		{0, "new"},
	}
	for _, tt := range tests {
		if got := labelFor(tt.rate); got != tt.want {
			t.Errorf("labelFor(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}
