package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/okian/triage/internal/domain/model"
)

// submitIssueRequest mirrors POST /issues.
type submitIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SubmittedBy string `json:"submitted_by"`
}

func (r submitIssueRequest) validate() string {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return "missing title"
	case strings.TrimSpace(r.SubmittedBy) == "":
		return "missing submitted_by"
	}
	return ""
}

func (s *Server) handleSubmitIssue(w http.ResponseWriter, r *http.Request) {
	var req submitIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	issue, err := s.deps.SubmitIssue(r.Context(), req.Title, req.Description, req.SubmittedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIssueResponse(issue))
}

// issueListResponse mirrors GET /issues.
type issueListResponse struct {
	Issues []issueResponse `json:"issues"`
	Total  int             `json:"total"`
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	var statuses []model.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			writeBadRequest(w, "unknown status "+raw)
			return
		}
		statuses = append(statuses, st)
	}

	issues := s.deps.ListIssues(r.Context(), statuses...)
	writeJSON(w, http.StatusOK, issueListResponse{
		Issues: toIssueList(issues),
		Total:  len(issues),
	})
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.deps.GetIssue(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}

// assignRequest mirrors POST /issues/{id}/assign.
type assignRequest struct {
	DeveloperID string `json:"developer_id"`
}

func (s *Server) handleAssignIssue(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.DeveloperID) == "" {
		writeBadRequest(w, "missing developer_id")
		return
	}

	issue, err := s.deps.AssignIssue(r.Context(), mux.Vars(r)["id"], req.DeveloperID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}

// callerRequest carries the caller identity for developer-only
// transitions. Identity arrives resolved; there is no ambient user.
type callerRequest struct {
	CallerID string `json:"caller_id"`
}

func (s *Server) handleStartWork(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CallerID) == "" {
		writeBadRequest(w, "missing caller_id")
		return
	}

	issue, err := s.deps.StartWork(r.Context(), mux.Vars(r)["id"], req.CallerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) handleMarkDone(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CallerID) == "" {
		writeBadRequest(w, "missing caller_id")
		return
	}

	issue, err := s.deps.MarkDone(r.Context(), mux.Vars(r)["id"], req.CallerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}

func (s *Server) handleResolveIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.deps.ResolveIssue(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueResponse(issue))
}
