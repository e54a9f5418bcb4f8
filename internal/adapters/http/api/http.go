// Package api declares the HTTP contracts and route registration for
// the routing engine. Handlers depend on an interface bundle so the
// layer stays loosely coupled to the service implementation.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/triage/internal/dashboard"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/profile"
	"github.com/okian/triage/pkg/metrics"
)

// Dependencies bundles the operations the handlers need.
type Dependencies interface {
	SubmitIssue(ctx context.Context, title, description, submitterID string) (model.Issue, error)
	AssignIssue(ctx context.Context, issueID, developerID string) (model.Issue, error)
	StartWork(ctx context.Context, issueID, callerID string) (model.Issue, error)
	MarkDone(ctx context.Context, issueID, callerID string) (model.Issue, error)
	ResolveIssue(ctx context.Context, issueID string) (model.Issue, error)
	GetIssue(ctx context.Context, issueID string) (model.Issue, error)

	RegisterDeveloper(ctx context.Context, id, displayName string) (model.Developer, error)
	GetDeveloperProfile(ctx context.Context, developerID string) (profile.Detail, error)
	DeveloperIssuesByStatus(ctx context.Context, developerID string, statuses ...model.Status) ([]model.Issue, error)

	Recommend(ctx context.Context, cat category.Category) []model.Candidate

	ListIssues(ctx context.Context, statuses ...model.Status) []model.Issue
	Summarize(ctx context.Context) dashboard.Summary

	PredictCategory(ctx context.Context, text string) (category.Category, error)

	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	EnqueueActivity(ctx context.Context, e model.ActivityEvent) bool
}

// StatsProvider supplies the /stats payload.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	stats StatsProvider
}

// NewServer creates an API server over deps.
func NewServer(deps Dependencies, stats StatsProvider) *Server {
	return &Server{deps: deps, stats: stats}
}

// Router builds the route table.
func (s *Server) Router(_ context.Context) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", instrument("healthz", s.handleHealth)).Methods(http.MethodGet)
	r.HandleFunc("/stats", instrument("stats", s.handleStats)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/issues", instrument("submit_issue", s.handleSubmitIssue)).Methods(http.MethodPost)
	r.HandleFunc("/issues", instrument("list_issues", s.handleListIssues)).Methods(http.MethodGet)
	r.HandleFunc("/issues/{id}", instrument("get_issue", s.handleGetIssue)).Methods(http.MethodGet)
	r.HandleFunc("/issues/{id}/assign", instrument("assign_issue", s.handleAssignIssue)).Methods(http.MethodPost)
	r.HandleFunc("/issues/{id}/start", instrument("start_work", s.handleStartWork)).Methods(http.MethodPost)
	r.HandleFunc("/issues/{id}/done", instrument("mark_done", s.handleMarkDone)).Methods(http.MethodPost)
	r.HandleFunc("/issues/{id}/resolve", instrument("resolve_issue", s.handleResolveIssue)).Methods(http.MethodPost)

	r.HandleFunc("/developers", instrument("register_developer", s.handleRegisterDeveloper)).Methods(http.MethodPost)
	r.HandleFunc("/developers/{id}", instrument("get_developer", s.handleGetDeveloper)).Methods(http.MethodGet)
	r.HandleFunc("/developers/{id}/issues", instrument("developer_issues", s.handleDeveloperIssues)).Methods(http.MethodGet)

	r.HandleFunc("/expertise/recommend", instrument("recommend", s.handleRecommend)).Methods(http.MethodGet)

	r.HandleFunc("/activity", instrument("post_activity", s.handlePostActivity)).Methods(http.MethodPost)
	r.HandleFunc("/predict", instrument("predict", s.handlePredict)).Methods(http.MethodPost)
	r.HandleFunc("/dashboard/summary", instrument("dashboard_summary", s.handleSummary)).Methods(http.MethodGet)

	return r
}

// candidateResponse mirrors one shortlist entry on the wire.
type candidateResponse struct {
	DeveloperID string  `json:"developer_id"`
	Score       float64 `json:"score"`
}

// issueResponse mirrors an issue on the wire.
type issueResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Status        string              `json:"status"`
	SubmittedBy   string              `json:"submitted_by"`
	SubmittedAt   string              `json:"submitted_at"`
	TopCandidates []candidateResponse `json:"top_candidates"`
	AssignedTo    string              `json:"assigned_to,omitempty"`
	AssignedAt    string              `json:"assigned_at,omitempty"`
	ResolvedAt    string              `json:"resolved_at,omitempty"`
}

func toIssueResponse(is model.Issue) issueResponse {
	resp := issueResponse{
		ID:            is.ID,
		Title:         is.Title,
		Description:   is.Description,
		Category:      is.Category.String(),
		Status:        is.Status.String(),
		SubmittedBy:   is.SubmittedBy,
		SubmittedAt:   is.SubmittedAt.Format(time.RFC3339),
		TopCandidates: make([]candidateResponse, 0, len(is.TopCandidates)),
		AssignedTo:    is.AssignedTo,
	}
	for _, c := range is.TopCandidates {
		resp.TopCandidates = append(resp.TopCandidates, candidateResponse{
			DeveloperID: c.DeveloperID,
			Score:       c.Score,
		})
	}
	if !is.AssignedAt.IsZero() {
		resp.AssignedAt = is.AssignedAt.Format(time.RFC3339)
	}
	if !is.ResolvedAt.IsZero() {
		resp.ResolvedAt = is.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}

func toIssueList(issues []model.Issue) []issueResponse {
	out := make([]issueResponse, 0, len(issues))
	for _, is := range issues {
		out = append(out, toIssueResponse(is))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
