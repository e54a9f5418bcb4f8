// Package dashboard is the polling-friendly query surface over the
// issue registry. Queries are idempotent and side-effect-free; results
// reflect the latest committed state as of the query, which is all a
// periodic poll needs.
package dashboard

import (
	"context"
	"sort"

	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/model"
)

// Summary holds the per-status counts shown at the top of the board.
type Summary struct {
	Total    int
	ByStatus map[model.Status]int
}

// ReadModel answers dashboard queries.
type ReadModel struct {
	issues *repository.IssueStore
}

// New creates a ReadModel over the issue store.
func New(issues *repository.IssueStore) *ReadModel {
	return &ReadModel{issues: issues}
}

// ListIssues returns issues matching any of the given statuses, newest
// first with id as tie-break. An empty filter returns everything.
func (m *ReadModel) ListIssues(ctx context.Context, statuses ...model.Status) []model.Issue {
	wanted := make(map[model.Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	var out []model.Issue
	for _, is := range m.issues.List(ctx) {
		if len(wanted) > 0 {
			if _, ok := wanted[is.Status]; !ok {
				continue
			}
		}
		out = append(out, is)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Summarize counts issues per status.
func (m *ReadModel) Summarize(ctx context.Context) Summary {
	s := Summary{ByStatus: make(map[model.Status]int)}
	for _, is := range m.issues.List(ctx) {
		s.Total++
		s.ByStatus[is.Status]++
	}
	return s
}
