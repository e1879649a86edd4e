package handlers

import (
	"net/http"

	apiContext "grievance/internal/api/context"
	"grievance/internal/engine/tenancy"
	"grievance/internal/pkg/errors"
)

type OrgHandler struct {
	tenancy *tenancy.Service
}

func NewOrgHandler(tenancySvc *tenancy.Service) *OrgHandler {
	return &OrgHandler{tenancy: tenancySvc}
}

type CreateOrgRequest struct {
	Name        string `json:"name"`
	EmailDomain string `json:"emailDomain"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrgRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := h.tenancy.CreateOrganization(r.Context(), actorOf(r), req.Name, req.EmailDomain)
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (h *OrgHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.tenancy.ListOrganizations(r.Context())
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.tenancy.GetOrganization(r.Context(), apiContext.Param(r.Context(), "org_id"))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

type AssignManagerRequest struct {
	UserID string `json:"userId"`
}

func (h *OrgHandler) AssignManager(w http.ResponseWriter, r *http.Request) {
	var req AssignManagerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "userId is required", nil)
		return
	}

	user, err := h.tenancy.AssignManager(r.Context(), actorOf(r), apiContext.Param(r.Context(), "org_id"), req.UserID)
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
