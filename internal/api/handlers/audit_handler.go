package handlers

import (
	"net/http"
	"strconv"

	"grievance/internal/pkg/errors"
	"grievance/internal/platform/audit"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(auditLogger *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: auditLogger}
}

// List returns the newest audit entries. ?limit= caps the page.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "limit must be a number", nil)
			return
		}
		limit = n
	}

	entries, err := h.audit.List(r.Context(), actorOf(r), limit)
	if err != nil {
		errors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
