package handlers

import (
	"net/http"

	apiContext "grievance/internal/api/context"
	"grievance/internal/engine/tenancy"
	"grievance/internal/pkg/errors"
)

type AuthHandler struct {
	tenancy *tenancy.Service
}

func NewAuthHandler(tenancySvc *tenancy.Service) *AuthHandler {
	return &AuthHandler{tenancy: tenancySvc}
}

type RegisterRequest struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Register creates the caller's profile from the verified token. The body is
// optional.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := apiContext.ClaimsFrom(r.Context())
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	var req RegisterRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	name := req.Name
	if name == "" {
		name = claims.Name
	}

	user, err := h.tenancy.Register(r.Context(), tenancy.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    name,
	}, req.Role)
	if err != nil {
		errors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := apiContext.ClaimsFrom(r.Context())
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	user, err := h.tenancy.GetUser(r.Context(), claims.Subject)
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
