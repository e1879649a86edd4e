package analytics

import (
	"math"
	"time"

	"grievance/internal/engine/workflow"
	"grievance/internal/platform/models"
)

// DefaultStuckAfter is how long an unresolved complaint may sit untouched.
const DefaultStuckAfter = 24 * time.Hour

// StageDelay is the mean time spent reaching Stage from the stage before it.
type StageDelay struct {
	Stage    string  `json:"stage"`
	AvgHours float64 `json:"avgHours"`
	Samples  int     `json:"samples"`
}

type WorkflowReport struct {
	Delays         []StageDelay `json:"delays"`
	Bottleneck     string       `json:"bottleneck,omitempty"`
	MaxDelayHours  float64      `json:"maxDelayHours"`
	Stuck          int          `json:"stuck"`
	Resolved       int          `json:"resolved"`
	ResolutionRate int          `json:"resolutionRate"`
}

// WorkflowInsights measures stage latency from status history and counts
// complaints that have not moved for longer than stuckAfter.
func WorkflowInsights(complaints []*models.Complaint, now time.Time, stuckAfter time.Duration) WorkflowReport {
	if stuckAfter <= 0 {
		stuckAfter = DefaultStuckAfter
	}

	sums := make([]float64, len(workflow.Stages))
	counts := make([]int, len(workflow.Stages))
	report := WorkflowReport{Delays: []StageDelay{}}

	for _, c := range complaints {
		for i := 1; i < len(workflow.Stages); i++ {
			prev, okPrev := c.StatusHistory[string(workflow.Stages[i-1])]
			cur, okCur := c.StatusHistory[string(workflow.Stages[i])]
			if okPrev && okCur {
				sums[i] += cur.Sub(prev).Hours()
				counts[i]++
			}
		}

		if workflow.EffectiveStatus(c) == workflow.Resolved {
			report.Resolved++
			continue
		}
		last := c.CreatedAt
		if c.LastUpdated != nil {
			last = *c.LastUpdated
		}
		if now.Sub(last) > stuckAfter {
			report.Stuck++
		}
	}

	for i := 1; i < len(workflow.Stages); i++ {
		if counts[i] == 0 {
			continue
		}
		avg := sums[i] / float64(counts[i])
		report.Delays = append(report.Delays, StageDelay{
			Stage:    string(workflow.Stages[i]),
			AvgHours: avg,
			Samples:  counts[i],
		})
		if avg > report.MaxDelayHours {
			report.MaxDelayHours = avg
			report.Bottleneck = string(workflow.Stages[i])
		}
	}

	if len(complaints) > 0 {
		report.ResolutionRate = int(math.Round(float64(report.Resolved) / float64(len(complaints)) * 100))
	}
	return report
}
