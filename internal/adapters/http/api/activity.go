package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
)

// activityRequest mirrors POST /activity.
type activityRequest struct {
	EventID     string `json:"event_id"`
	DeveloperID string `json:"developer_id"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
}

func (a activityRequest) validate() string {
	switch {
	case strings.TrimSpace(a.EventID) == "":
		return "missing event_id"
	case strings.TrimSpace(a.DeveloperID) == "":
		return "missing developer_id"
	case !model.SignalKind(a.Kind).Valid():
		return "kind must be resolved or commit"
	}
	return ""
}

// ackResponse acknowledges an accepted or deduplicated event.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// handlePostActivity ingests one activity attribution. The event id is
// recorded before enqueueing so client retries of the same event are
// acknowledged without a second increment; a failed enqueue rolls the
// record back so the retry can succeed.
func (s *Server) handlePostActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}
	cat, err := category.Parse(req.Category)
	if err != nil {
		writeBadRequest(w, "unknown category "+req.Category)
		return
	}

	if s.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	event := model.ActivityEvent{
		EventID:     req.EventID,
		DeveloperID: req.DeveloperID,
		Category:    cat,
		Kind:        model.SignalKind(req.Kind),
	}
	if ok := s.deps.EnqueueActivity(r.Context(), event); !ok {
		s.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
