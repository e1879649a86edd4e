package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"grievance/internal/engine/workflow"
	"grievance/internal/platform/models"
)

type Scorecard struct {
	ManagerID      string `json:"managerId"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrgID          string `json:"orgId,omitempty"`
	OrgName        string `json:"orgName"`
	Total          int    `json:"total"`
	Resolved       int    `json:"resolved"`
	InProgress     int    `json:"inProgress"`
	Pending        int    `json:"pending"`
	ResolutionRate int    `json:"resolutionRate"`
	AvgTime        string `json:"avgTime"`
	Status         string `json:"status"`
}

type rateLabel struct {
	Min   float64
	Label string
	// Exclusive makes Min a strict lower bound.
	Exclusive bool
}

var rateLabels = []rateLabel{
	{Min: 80, Label: "excellent"},
	{Min: 50, Label: "good"},
	{Min: 0, Label: "needs-improvement", Exclusive: true},
}

func labelFor(rate float64) string {
	for _, l := range rateLabels {
		if rate > l.Min || (!l.Exclusive && rate == l.Min) {
			return l.Label
		}
	}
	return "new"
}

// Scorecards builds one card per manager. A complaint counts toward a manager
// when it is assigned to them or belongs to their organization, so managers
// sharing an organization each count the same complaints.
func Scorecards(users []*models.User, orgs []*models.Organization, complaints []*models.Complaint) []Scorecard {
	orgNames := make(map[string]string, len(orgs))
	for _, o := range orgs {
		orgNames[o.ID] = o.Name
	}

	cards := []Scorecard{}
	for _, u := range users {
		if u.Role != models.RoleManager {
			continue
		}
		cards = append(cards, scorecard(u, orgNames, complaints))
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Resolved > cards[j].Resolved
	})
	return cards
}

func scorecard(m *models.User, orgNames map[string]string, complaints []*models.Complaint) Scorecard {
	card := Scorecard{
		ManagerID: m.ID,
		Email:     m.Email,
		Name:      m.Name,
		OrgID:     m.OrgID,
		OrgName:   "Unassigned",
	}
	if name, ok := orgNames[m.OrgID]; ok {
		card.OrgName = name
	}

	var totalHours float64
	timed := 0

	for _, c := range complaints {
		if c.AssignedManagerID != m.ID && (m.OrgID == "" || c.OrgID != m.OrgID) {
			continue
		}
		card.Total++

		switch workflow.EffectiveStatus(c) {
		case workflow.Resolved:
			card.Resolved++
			if at, ok := resolvedTime(c); ok && !c.CreatedAt.IsZero() {
				totalHours += at.Sub(c.CreatedAt).Hours()
				timed++
			}
		case workflow.InProgress:
			card.InProgress++
		default:
			card.Pending++
		}
	}

	var rate float64
	if card.Total > 0 {
		rate = float64(card.Resolved) / float64(card.Total) * 100
	}
	card.ResolutionRate = int(math.Round(rate))
	card.Status = labelFor(rate)

	card.AvgTime = "-"
	if timed > 0 {
		card.AvgTime = fmt.Sprintf("%.1fh", totalHours/float64(timed))
	}
	return card
}

func resolvedTime(c *models.Complaint) (time.Time, bool) {
	if at, ok := c.StatusHistory[string(workflow.Resolved)]; ok {
		return at, true
	}
	if c.ResolvedAt != nil {
		return *c.ResolvedAt, true
	}
	return time.Time{}, false
}
