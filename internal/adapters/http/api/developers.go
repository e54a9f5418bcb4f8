package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/profile"
)

// registerDeveloperRequest mirrors POST /developers.
type registerDeveloperRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// developerResponse mirrors a roster entry on the wire.
type developerResponse struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	CreatedAt   string   `json:"created_at"`
	IssueRefs   []string `json:"issue_refs"`
}

func (s *Server) handleRegisterDeveloper(w http.ResponseWriter, r *http.Request) {
	var req registerDeveloperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeBadRequest(w, "missing id")
		return
	}

	dev, err := s.deps.RegisterDeveloper(r.Context(), req.ID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, developerResponse{
		ID:          dev.ID,
		DisplayName: dev.DisplayName,
		CreatedAt:   dev.CreatedAt.Format(time.RFC3339),
		IssueRefs:   dev.IssueRefs,
	})
}

// profileResponse mirrors GET /developers/{id}.
type profileResponse struct {
	Developer developerResponse             `json:"developer"`
	Scores    map[string]float64            `json:"scores"`
	Signals   map[string]signalResponse     `json:"signals"`
	Open      map[string][]issueResponse    `json:"open_by_category"`
	Resolved  map[string][]issueResponse    `json:"resolved_by_category"`
}

type signalResponse struct {
	ResolvedCount uint64 `json:"resolved_count"`
	CommitCount   uint64 `json:"commit_count"`
}

func toProfileResponse(d profile.Detail) profileResponse {
	resp := profileResponse{
		Developer: developerResponse{
			ID:          d.Profile.Developer.ID,
			DisplayName: d.Profile.Developer.DisplayName,
			CreatedAt:   d.Profile.Developer.CreatedAt.Format(time.RFC3339),
			IssueRefs:   d.Profile.Developer.IssueRefs,
		},
		Scores:   make(map[string]float64, len(d.Profile.Scores)),
		Signals:  make(map[string]signalResponse, len(d.Profile.Signals)),
		Open:     make(map[string][]issueResponse, len(d.OpenByCategory)),
		Resolved: make(map[string][]issueResponse, len(d.ResolvedByCategory)),
	}
	for cat, score := range d.Profile.Scores {
		resp.Scores[cat.String()] = score
	}
	for cat, rec := range d.Profile.Signals {
		resp.Signals[cat.String()] = signalResponse{
			ResolvedCount: rec.ResolvedCount,
			CommitCount:   rec.CommitCount,
		}
	}
	for cat, issues := range d.OpenByCategory {
		resp.Open[cat.String()] = toIssueList(issues)
	}
	for cat, issues := range d.ResolvedByCategory {
		resp.Resolved[cat.String()] = toIssueList(issues)
	}
	return resp
}

func (s *Server) handleGetDeveloper(w http.ResponseWriter, r *http.Request) {
	detail, err := s.deps.GetDeveloperProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(detail))
}

func (s *Server) handleDeveloperIssues(w http.ResponseWriter, r *http.Request) {
	var statuses []model.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			writeBadRequest(w, "unknown status "+raw)
			return
		}
		statuses = append(statuses, st)
	}

	issues, err := s.deps.DeveloperIssuesByStatus(r.Context(), mux.Vars(r)["id"], statuses...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueListResponse{
		Issues: toIssueList(issues),
		Total:  len(issues),
	})
}
