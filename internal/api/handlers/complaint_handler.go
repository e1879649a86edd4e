package handlers

import (
	"net/http"
	"strconv"

	apiContext "grievance/internal/api/context"
	"grievance/internal/engine/classifier"
	"grievance/internal/engine/tracking"
	"grievance/internal/engine/workflow"
	"grievance/internal/pkg/errors"
)

type ComplaintHandler struct {
	workflow  *workflow.Service
	appDomain string
}

func NewComplaintHandler(workflowSvc *workflow.Service, appDomain string) *ComplaintHandler {
	return &ComplaintHandler{workflow: workflowSvc, appDomain: appDomain}
}

type SubmitComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitComplaintRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	submission, err := h.workflow.Submit(r.Context(), actorOf(r), req.Title, req.Description)
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.workflow.List(r.Context(), actorOf(r))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.workflow.Get(r.Context(), actorOf(r), complaintID(r))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.workflow.Delete(r.Context(), actorOf(r), complaintID(r)); err != nil {
		errors.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type StageRequest struct {
	Stage string `json:"stage"`
}

func (h *ComplaintHandler) Advance(w http.ResponseWriter, r *http.Request) {
	var req StageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.workflow.Advance(r.Context(), actorOf(r), complaintID(r), workflow.Stage(req.Stage))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type RatingRequest struct {
	Rating int `json:"rating"`
}

func (h *ComplaintHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.workflow.Rate(r.Context(), actorOf(r), complaintID(r), req.Rating); err != nil {
		errors.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ReanalyzeResponse struct {
	Success  bool                `json:"success"`
	Analysis classifier.Analysis `json:"analysis"`
}

// Reanalyze re-runs classification on the stored text.
func (h *ComplaintHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.workflow.Reanalyze(r.Context(), actorOf(r), complaintID(r))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReanalyzeResponse{Success: true, Analysis: analysis})
}

// GetQRCode renders the complaint's public tracking link as a PNG.
func (h *ComplaintHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "size must be a number", nil)
			return
		}
		size = n
	}

	c, err := h.workflow.Get(r.Context(), actorOf(r), complaintID(r))
	if err != nil {
		errors.Write(w, err)
		return
	}

	png, err := tracking.GenerateQRCode(tracking.TrackingURL(h.appDomain, c.ID), size)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func complaintID(r *http.Request) string {
	return apiContext.Param(r.Context(), "complaint_id")
}
