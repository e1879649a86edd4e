package analytics

import (
	"sort"

	"grievance/internal/engine/workflow"
	"grievance/internal/platform/models"
)

type Totals struct {
	Organizations int `json:"organizations"`
	Complaints    int `json:"complaints"`
	Analyzed      int `json:"analyzed"`
	Resolved      int `json:"resolved"`
	Pending       int `json:"pending"`
}

type OrgCount struct {
	OrgID    string `json:"orgId"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Overview is the admin dashboard's chart data.
type Overview struct {
	Totals     Totals         `json:"totals"`
	ByOrg      []OrgCount     `json:"byOrganization"`
	ByPriority map[string]int `json:"byPriority"`
	ByDay      []DayCount     `json:"byDay"`
}

// BuildOverview counts by effective status. Organizations keep their given
// order; days are ascending.
func BuildOverview(orgs []*models.Organization, complaints []*models.Complaint) Overview {
	ov := Overview{
		Totals:     Totals{Organizations: len(orgs), Complaints: len(complaints)},
		ByOrg:      make([]OrgCount, 0, len(orgs)),
		ByPriority: make(map[string]int),
		ByDay:      []DayCount{},
	}

	byOrg := make(map[string]*OrgCount, len(orgs))
	for _, o := range orgs {
		ov.ByOrg = append(ov.ByOrg, OrgCount{OrgID: o.ID, Name: o.Name})
	}
	for i := range ov.ByOrg {
		byOrg[ov.ByOrg[i].OrgID] = &ov.ByOrg[i]
	}

	days := make(map[string]int)
	for _, c := range complaints {
		resolved := false
		switch workflow.EffectiveStatus(c) {
		case workflow.Resolved:
			ov.Totals.Resolved++
			resolved = true
		default:
			ov.Totals.Pending++
		}
		if c.AIAnalysis != nil {
			ov.Totals.Analyzed++
			if c.AIAnalysis.Priority != "" {
				ov.ByPriority[c.AIAnalysis.Priority]++
			}
		}

		if oc, ok := byOrg[c.OrgID]; ok {
			oc.Total++
			if resolved {
				oc.Resolved++
			}
		}
		if !c.CreatedAt.IsZero() {
			days[c.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}

	for d, n := range days {
		ov.ByDay = append(ov.ByDay, DayCount{Date: d, Count: n})
	}
	sort.Slice(ov.ByDay, func(i, j int) bool { return ov.ByDay[i].Date < ov.ByDay[j].Date })

	return ov
}
