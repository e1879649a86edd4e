package handlers

import (
	"net/http"

	"grievance/internal/engine/tenancy"
	"grievance/internal/pkg/errors"
)

type UserHandler struct {
	tenancy *tenancy.Service
}

func NewUserHandler(tenancySvc *tenancy.Service) *UserHandler {
	return &UserHandler{tenancy: tenancySvc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.tenancy.ListUsers(r.Context(), actorOf(r))
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
