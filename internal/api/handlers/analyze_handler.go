package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"grievance/internal/engine/classifier"
	"grievance/internal/platform/metrics"
)

type AnalyzeRequest struct {
	ComplaintText string `json:"complaintText"`
}

type AnalyzeResponse struct {
	Success  bool                 `json:"success"`
	Analysis *classifier.Analysis `json:"analysis,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// AnalyzeHandler serves the stateless classification endpoint.
type AnalyzeHandler struct{}

func NewAnalyzeHandler() *AnalyzeHandler {
	return &AnalyzeHandler{}
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ComplaintText == "" {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Error: "Complaint text required"})
		return
	}

	analysis := classifier.Classify(req.ComplaintText)
	metrics.ComplaintsClassified.WithLabelValues(analysis.Category).Inc()
	log.Debug().Str("category", analysis.Category).Str("priority", analysis.Priority).Msg("complaint text analyzed")

	writeJSON(w, http.StatusOK, AnalyzeResponse{Success: true, Analysis: &analysis})
}
