// Package workflow owns the complaint lifecycle: deriving the current stage
// from stored fields and guarding stage changes.
package workflow

import (
	"fmt"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/platform/models"
)

type Stage string

const (
	Submitted  Stage = "submitted"
	Analyzed   Stage = "analyzed"
	Assigned   Stage = "assigned"
	InProgress Stage = "in-progress"
	Resolved   Stage = "resolved"
)

// Stages lists the lifecycle in forward order.
var Stages = []Stage{Submitted, Analyzed, Assigned, InProgress, Resolved}

// Index returns the position of s in Stages. Unknown values index as 0.
func Index(s Stage) int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return 0
}

func Known(s Stage) bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

type statusRule func(c *models.Complaint) (Stage, bool)

// Evaluated in order; the first rule that applies decides.
var statusRules = []statusRule{
	fromWorkflowStatus,
	fromHistory,
	fromAnalysis,
}

func fromWorkflowStatus(c *models.Complaint) (Stage, bool) {
	return Stage(c.WorkflowStatus), c.WorkflowStatus != ""
}

func fromHistory(c *models.Complaint) (Stage, bool) {
	for i := len(Stages) - 1; i >= 0; i-- {
		if _, ok := c.StatusHistory[string(Stages[i])]; ok {
			return Stages[i], true
		}
	}
	return "", false
}

func fromAnalysis(c *models.Complaint) (Stage, bool) {
	return Analyzed, c.AIAnalysis != nil
}

// EffectiveStatus derives the single lifecycle stage of a complaint whose
// stored fields may be partial or legacy.
func EffectiveStatus(c *models.Complaint) Stage {
	if c == nil {
		return Submitted
	}
	for _, rule := range statusRules {
		if s, ok := rule(c); ok {
			return s
		}
	}
	return Submitted
}

// CheckTransition allows only a move to the immediate successor of current.
func CheckTransition(current, target Stage) error {
	if !Known(target) {
		return apperrors.Validation(fmt.Sprintf("unknown stage %q", target))
	}
	to := Index(target)
	if to < 1 {
		return apperrors.Conflict("complaints cannot be moved back to submitted")
	}
	if from := Index(current); to != from+1 {
		return apperrors.Conflict(fmt.Sprintf("cannot move from %s to %s", current, target))
	}
	return nil
}
