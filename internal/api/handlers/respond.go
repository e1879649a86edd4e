package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "grievance/internal/api/context"
	"grievance/internal/pkg/errors"
	"grievance/internal/platform/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return false
	}
	return true
}

func actorOf(r *http.Request) models.Actor {
	actor, _ := apiContext.ActorFrom(r.Context())
	return actor
}
