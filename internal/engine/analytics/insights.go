// Package analytics computes dashboard aggregates over the complaint
// collection. Everything here is a pure function of its inputs; callers
// recompute on every change notification or on demand.
package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"grievance/internal/engine/classifier"
	"grievance/internal/platform/models"
)

const maxInsights = 6

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// threshold maps a count at or above Min to a severity. Tables are ordered
// from the highest Min down.
type threshold struct {
	Min      int
	Severity string
}

var (
	patternSeverity    = []threshold{{3, SeverityHigh}, {2, SeverityMedium}}
	spikeSeverity      = []threshold{{5, SeverityHigh}, {3, SeverityMedium}}
	prioritySeverity   = []threshold{{31, SeverityHigh}, {0, SeverityMedium}}
	emotionSeverity    = []threshold{{5, SeverityHigh}, {3, SeverityMedium}}
	unassignedSeverity = []threshold{{5, SeverityHigh}, {1, SeverityLow}}
)

// severity returns "" when n is below every threshold.
func severity(table []threshold, n int) string {
	for _, t := range table {
		if n >= t.Min {
			return t.Severity
		}
	}
	return ""
}

var negativeEmotions = map[string]bool{
	classifier.EmotionFrustrated:   true,
	classifier.EmotionAngry:        true,
	"Upset":                        true,
	classifier.EmotionDisappointed: true,
}

type detector func(complaints []*models.Complaint) []Insight

var detectors = []detector{
	crossOrgPatterns,
	monthlySpikes,
	priorityAlert,
	emotionAlert,
	unassignedBacklog,
}

// GenerateInsights runs every detector in order and keeps the first six
// cards. complaints should be ordered by creation time.
func GenerateInsights(complaints []*models.Complaint) []Insight {
	insights := []Insight{}
	for _, d := range detectors {
		insights = append(insights, d(complaints)...)
		if len(insights) >= maxInsights {
			return insights[:maxInsights]
		}
	}
	return insights
}

func categoryOf(c *models.Complaint) string {
	if c.AIAnalysis == nil || c.AIAnalysis.Category == "" {
		return classifier.CategoryGeneral
	}
	return c.AIAnalysis.Category
}

func crossOrgPatterns(complaints []*models.Complaint) []Insight {
	var order []string
	orgsByCategory := make(map[string]map[string]struct{})

	for _, c := range complaints {
		cat := categoryOf(c)
		set, ok := orgsByCategory[cat]
		if !ok {
			set = make(map[string]struct{})
			orgsByCategory[cat] = set
			order = append(order, cat)
		}
		if c.OrgID != "" {
			set[c.OrgID] = struct{}{}
		}
	}

	var out []Insight
	for _, cat := range order {
		n := len(orgsByCategory[cat])
		sev := severity(patternSeverity, n)
		if sev == "" {
			continue
		}
		out = append(out, Insight{
			Type:        "pattern",
			Title:       fmt.Sprintf("%s issues are common across %d organizations", cat, n),
			Description: fmt.Sprintf("Multiple institutions reporting similar %s concerns", strings.ToLower(cat)),
			Severity:    sev,
		})
	}
	return out
}

type monthKey struct {
	year     int
	month    time.Month
	category string
}

func monthlySpikes(complaints []*models.Complaint) []Insight {
	var order []monthKey
	counts := make(map[monthKey]int)

	for _, c := range complaints {
		if c.CreatedAt.IsZero() {
			continue
		}
		k := monthKey{c.CreatedAt.Year(), c.CreatedAt.Month(), categoryOf(c)}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	var out []Insight
	for _, k := range order {
		n := counts[k]
		sev := severity(spikeSeverity, n)
		if sev == "" {
			continue
		}
		out = append(out, Insight{
			Type:        "spike",
			Title:       fmt.Sprintf("%s complaints spike in %s %d", k.category, k.month, k.year),
			Description: fmt.Sprintf("%d complaints recorded - consider proactive measures", n),
			Severity:    sev,
		})
	}
	return out
}

func priorityAlert(complaints []*models.Complaint) []Insight {
	n := 0
	for _, c := range complaints {
		if c.AIAnalysis == nil {
			continue
		}
		if p := c.AIAnalysis.Priority; p == classifier.PriorityCritical || p == classifier.PriorityHigh {
			n++
		}
	}
	if n == 0 {
		return nil
	}

	pct := int(math.Round(float64(n) / float64(len(complaints)) * 100))
	return []Insight{{
		Type:        "alert",
		Title:       fmt.Sprintf("%d%% of complaints are high priority", pct),
		Description: fmt.Sprintf("%d complaints require immediate attention", n),
		Severity:    severity(prioritySeverity, pct),
	}}
}

func emotionAlert(complaints []*models.Complaint) []Insight {
	n := 0
	for _, c := range complaints {
		if c.AIAnalysis != nil && negativeEmotions[c.AIAnalysis.Emotion] {
			n++
		}
	}
	sev := severity(emotionSeverity, n)
	if sev == "" {
		return nil
	}
	return []Insight{{
		Type:        "emotion",
		Title:       fmt.Sprintf("%d complaints show negative sentiment", n),
		Description: "Customer satisfaction may need attention",
		Severity:    sev,
	}}
}

func unassignedBacklog(complaints []*models.Complaint) []Insight {
	n := 0
	for _, c := range complaints {
		if c.AssignedManagerID == "" && c.Status != models.StatusResolved {
			n++
		}
	}
	sev := severity(unassignedSeverity, n)
	if sev == "" {
		return nil
	}
	return []Insight{{
		Type:        "action",
		Title:       fmt.Sprintf("%d complaints pending assignment", n),
		Description: "These complaints need manager assignment",
		Severity:    sev,
	}}
}
