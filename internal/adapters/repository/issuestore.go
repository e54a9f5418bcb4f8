package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/metrics"
)

// issueEntry pairs an issue with its transition lock. The lock is the
// per-issue serialization point: at most one mutation is in flight per
// id, while mutations on other ids proceed independently.
type issueEntry struct {
	mu    sync.Mutex
	issue model.Issue
}

// IssueStore owns issue records and provides per-key atomic
// read-modify-write. Issues are never deleted; the full history of
// records is the implicit audit trail.
type IssueStore struct {
	mu      sync.RWMutex // guards the map structure, not issue contents
	entries map[string]*issueEntry
}

// NewIssueStore creates an empty in-memory issue store.
func NewIssueStore() *IssueStore {
	return &IssueStore{
		entries: make(map[string]*issueEntry),
	}
}

// Put stores a newly created issue. Ids are minted by the caller and
// must be unique.
func (s *IssueStore) Put(_ context.Context, issue model.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[issue.ID]; ok {
		return fmt.Errorf("%s: %w", issue.ID, ErrIssueExists)
	}
	s.entries[issue.ID] = &issueEntry{issue: issue}
	metrics.UpdateTrackedIssues(len(s.entries))
	return nil
}

// Get returns a copy of the issue.
func (s *IssueStore) Get(_ context.Context, id string) (model.Issue, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return model.Issue{}, fmt.Errorf("%s: %w", id, ErrIssueNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.issue, nil
}

// Update applies mutate to the issue under its transition lock and
// returns the stored result. When mutate returns an error the stored
// issue is untouched, so a rejected transition can never leave a
// half-applied state. Blocking on the lock is acceptable here:
// transitions are short and the entity set is organization-sized.
func (s *IssueStore) Update(_ context.Context, id string, mutate func(model.Issue) (model.Issue, error)) (model.Issue, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return model.Issue{}, fmt.Errorf("%s: %w", id, ErrIssueNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next, err := mutate(entry.issue)
	if err != nil {
		return entry.issue, err
	}
	entry.issue = next
	return next, nil
}

// List returns copies of all issues in unspecified order. Each entry is
// read under its own lock, so no single issue is ever torn, while the
// list as a whole is a snapshot of "some recent instant".
func (s *IssueStore) List(_ context.Context) []model.Issue {
	s.mu.RLock()
	entries := make([]*issueEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]model.Issue, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.issue)
		e.mu.Unlock()
	}
	return out
}

// Count returns the number of issues tracked.
func (s *IssueStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
