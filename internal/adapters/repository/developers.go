package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/metrics"
)

// devEntry holds the stored developer plus the set of issue ids they
// currently hold.
type devEntry struct {
	id          string
	displayName string
	createdAt   time.Time
	refs        map[string]struct{}
}

// DeveloperStore owns the developer roster. Developers are created on
// first reference and never hard-deleted.
type DeveloperStore struct {
	mu   sync.RWMutex
	devs map[string]*devEntry
	now  func() time.Time
}

// NewDeveloperStore creates an empty in-memory roster.
func NewDeveloperStore() *DeveloperStore {
	return &DeveloperStore{
		devs: make(map[string]*devEntry),
		now:  time.Now,
	}
}

func (e *devEntry) toModel() model.Developer {
	refs := make([]string, 0, len(e.refs))
	for id := range e.refs {
		refs = append(refs, id)
	}
	sort.Strings(refs)
	return model.Developer{
		ID:          e.id,
		DisplayName: e.displayName,
		CreatedAt:   e.createdAt,
		IssueRefs:   refs,
	}
}

// Ensure returns the developer, creating it when absent. A blank
// displayName defaults to the id so implicitly created developers are
// still presentable.
func (s *DeveloperStore) Ensure(_ context.Context, id, displayName string) model.Developer {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.devs[id]
	if !ok {
		if displayName == "" {
			displayName = id
		}
		entry = &devEntry{
			id:          id,
			displayName: displayName,
			createdAt:   s.now(),
			refs:        make(map[string]struct{}),
		}
		s.devs[id] = entry
		metrics.UpdateTrackedDevelopers(len(s.devs))
	} else if displayName != "" {
		entry.displayName = displayName
	}
	return entry.toModel()
}

// Get returns the developer or ErrDeveloperNotFound.
func (s *DeveloperStore) Get(_ context.Context, id string) (model.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.devs[id]
	if !ok {
		return model.Developer{}, fmt.Errorf("%s: %w", id, ErrDeveloperNotFound)
	}
	return entry.toModel(), nil
}

// AddIssueRef registers an issue on the developer's held set.
func (s *DeveloperStore) AddIssueRef(_ context.Context, developerID, issueID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.devs[developerID]; ok {
		entry.refs[issueID] = struct{}{}
	}
}

// RemoveIssueRef drops an issue from the developer's held set, used
// when the issue reaches its terminal state.
func (s *DeveloperStore) RemoveIssueRef(_ context.Context, developerID, issueID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.devs[developerID]; ok {
		delete(entry.refs, issueID)
	}
}

// List returns the roster sorted by developer id.
func (s *DeveloperStore) List(_ context.Context) []model.Developer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Developer, 0, len(s.devs))
	for _, entry := range s.devs {
		out = append(out, entry.toModel())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the roster size.
func (s *DeveloperStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devs)
}
