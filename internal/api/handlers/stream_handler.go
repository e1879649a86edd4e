package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	apiContext "grievance/internal/api/context"
	"grievance/internal/pkg/errors"
	"grievance/internal/platform/models"
	"grievance/internal/platform/realtime"
)

const keepAliveInterval = 15 * time.Second

// collections maps the stream path to the hub collection and whether only
// admins may follow it. "all" subscribes to every collection.
var collections = map[string]struct {
	name      string
	adminOnly bool
}{
	"all":                            {"", true},
	realtime.CollectionOrganizations: {realtime.CollectionOrganizations, false},
	realtime.CollectionComplaints:    {realtime.CollectionComplaints, false},
	realtime.CollectionUsers:         {realtime.CollectionUsers, true},
	realtime.CollectionAuditLogs:     {realtime.CollectionAuditLogs, true},
}

type StreamHandler struct {
	hub *realtime.Hub
}

func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stream sends change notifications as Server-Sent Events until the client
// goes away.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	target, ok := collections[apiContext.Param(r.Context(), "collection")]
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Unknown collection", nil)
		return
	}
	if target.adminOnly && actorOf(r).Role != models.RoleAdmin {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	actor := actorOf(r)
	events := make(chan realtime.Change, 16)
	sub := h.hub.Subscribe(target.name, func(c realtime.Change) {
		if !visibleChange(actor, c) {
			return
		}
		select {
		case events <- c:
		default:
		}
	})
	defer sub.Unsubscribe()

	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case change := <-events:
			payload, err := json.Marshal(change)
			if err != nil {
				continue
			}
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// visibleChange applies the complaint read scope to the stream: managers see
// their organization's complaints and users only their own.
func visibleChange(actor models.Actor, c realtime.Change) bool {
	if actor.Role == models.RoleAdmin || c.Collection != realtime.CollectionComplaints {
		return true
	}
	if actor.Role == models.RoleManager {
		return actor.OrgID != "" && c.OrgID == actor.OrgID
	}
	return actor.UserID != "" && c.OwnerID == actor.UserID
}
