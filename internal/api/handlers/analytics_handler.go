package handlers

import (
	"net/http"
	"time"

	"grievance/internal/engine/analytics"
	"grievance/internal/pkg/errors"
	"grievance/internal/platform/models"
)

type AnalyticsHandler struct {
	analytics *analytics.Service
}

func NewAnalyticsHandler(analyticsSvc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsSvc}
}

type InsightsResponse struct {
	Insights    []analytics.Insight `json:"insights"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Stale       bool                `json:"stale"`
}

// GetInsights serves platform insights to admins and organization insights
// to managers.
func (h *AnalyticsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	actor := actorOf(r)

	var (
		snap *analytics.Snapshot
		err  error
	)
	if actor.Role == models.RoleAdmin {
		snap, err = h.analytics.Admin(r.Context(), actor)
	} else {
		snap, err = h.analytics.Organization(r.Context(), actor)
	}
	if err != nil {
		errors.Write(w, err)
		return
	}

	insights := snap.Insights
	if insights == nil {
		insights = []analytics.Insight{}
	}
	writeJSON(w, http.StatusOK, InsightsResponse{Insights: insights, GeneratedAt: snap.GeneratedAt, Stale: snap.Stale})
}

type ScorecardsResponse struct {
	Scorecards  []analytics.Scorecard `json:"scorecards"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Stale       bool                  `json:"stale"`
}

func (h *AnalyticsHandler) GetScorecards(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Admin(r.Context(), actorOf(r))
	if err != nil {
		errors.Write(w, err)
		return
	}

	cards := snap.Scorecards
	if cards == nil {
		cards = []analytics.Scorecard{}
	}
	writeJSON(w, http.StatusOK, ScorecardsResponse{Scorecards: cards, GeneratedAt: snap.GeneratedAt, Stale: snap.Stale})
}

type OverviewResponse struct {
	*analytics.Overview
	GeneratedAt time.Time `json:"generatedAt"`
	Stale       bool      `json:"stale"`
}

func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Admin(r.Context(), actorOf(r))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OverviewResponse{Overview: snap.Overview, GeneratedAt: snap.GeneratedAt, Stale: snap.Stale})
}

type WorkflowResponse struct {
	*analytics.WorkflowReport
	GeneratedAt time.Time `json:"generatedAt"`
	Stale       bool      `json:"stale"`
}

func (h *AnalyticsHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analytics.Organization(r.Context(), actorOf(r))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkflowResponse{WorkflowReport: snap.Workflow, GeneratedAt: snap.GeneratedAt, Stale: snap.Stale})
}
