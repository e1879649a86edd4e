package workflow

import (
	"testing"
	"time"

	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/platform/models"
)

func TestEffectiveStatus(t *testing.T) {
	t1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name      string
		complaint *models.Complaint
		expected  Stage
	}{
		{
			name: "Workflow Status Wins",
			complaint: &models.Complaint{
				WorkflowStatus: "assigned",
				StatusHistory:  map[string]time.Time{"resolved": t2},
			},
			expected: Assigned,
		},
		{
			name: "Latest History Stage",
			complaint: &models.Complaint{
				StatusHistory: map[string]time.Time{"submitted": t1, "analyzed": t2},
			},
			expected: Analyzed,
		},
		{
			name: "History Skips Gaps",
			complaint: &models.Complaint{
				StatusHistory: map[string]time.Time{"submitted": t1, "in-progress": t2},
			},
			expected: InProgress,
		},
		{
			name:      "Analysis Only",
			complaint: &models.Complaint{AIAnalysis: &models.Analysis{Category: "Hostel"}},
			expected:  Analyzed,
		},
		{
			name:      "Legacy Open",
			complaint: &models.Complaint{Status: models.StatusOpen},
			expected:  Submitted,
		},
		{
			name:      "Empty",
			complaint: &models.Complaint{},
			expected:  Submitted,
		},
		{
			name: "Unknown History Keys Fall Through",
			complaint: &models.Complaint{
				StatusHistory: map[string]time.Time{"escalated": t1},
				AIAnalysis:    &models.Analysis{},
			},
			expected: Analyzed,
		},
		{
			name:      "Nil",
			complaint: nil,
			expected:  Submitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveStatus(tt.complaint); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		current Stage
		target  Stage
		kind    apperrors.Kind
		ok      bool
	}{
		{"Analyzed To Assigned", Analyzed, Assigned, 0, true},
		{"Assigned To In Progress", Assigned, InProgress, 0, true},
		{"In Progress To Resolved", InProgress, Resolved, 0, true},
		{"Submitted To Analyzed", Submitted, Analyzed, 0, true},
		{"Skip Rejected", Assigned, Resolved, apperrors.KindConflict, false},
		{"Backward Rejected", InProgress, Assigned, apperrors.KindConflict, false},
		{"Same Stage Rejected", Assigned, Assigned, apperrors.KindConflict, false},
		{"Submitted Never Manual", Submitted, Submitted, apperrors.KindConflict, false},
		{"Past Terminal", Resolved, Resolved, apperrors.KindConflict, false},
		{"Unknown Current Indexes As Zero", Stage("escalated"), Analyzed, 0, true},
		{"Unknown Target", Analyzed, Stage("closed"), apperrors.KindValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.current, tt.target)
			if tt.ok {
				if err != nil {
					t.Fatalf("CheckTransition() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("CheckTransition() expected error")
			}
			if got := apperrors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	for i, s := range Stages {
		if Index(s) != i {
			t.Errorf("Index(%s) = %d, want %d", s, Index(s), i)
		}
	}
	if Index("bogus") != 0 {
		t.Error("unknown stage should index as 0")
	}
}
