// Package profile builds the per-developer read-side view: expertise
// scores per category and the issues the developer carries. It is a
// projection over the issue registry and signal store — never a source
// of truth — and tolerates concurrent mutation of what it reads.
package profile

import (
	"context"
	"sort"

	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/scoring"
)

// Profile is a developer plus the derived per-category view of their
// expertise. Scores are recomputed on every query so they always
// reflect the current signal records.
type Profile struct {
	Developer model.Developer
	Scores    map[category.Category]float64
	Signals   map[category.Category]model.SignalRecord
}

// Detail extends Profile with the developer's issues grouped by
// category: open work (assigned through done) and confirmed
// resolutions.
type Detail struct {
	Profile            Profile
	OpenByCategory     map[category.Category][]model.Issue
	ResolvedByCategory map[category.Category][]model.Issue
}

// Aggregator answers profile queries.
type Aggregator struct {
	issues     *repository.IssueStore
	developers *repository.DeveloperStore
	signals    *repository.SignalStore
	scorer     *scoring.Scorer
}

// New creates an Aggregator over the given stores.
func New(
	issues *repository.IssueStore,
	developers *repository.DeveloperStore,
	signals *repository.SignalStore,
	scorer *scoring.Scorer,
) *Aggregator {
	return &Aggregator{
		issues:     issues,
		developers: developers,
		signals:    signals,
		scorer:     scorer,
	}
}

// GetProfile returns the developer's scores and raw signals for every
// category. Unknown developers yield ErrDeveloperNotFound.
func (a *Aggregator) GetProfile(ctx context.Context, developerID string) (Profile, error) {
	dev, err := a.developers.Get(ctx, developerID)
	if err != nil {
		return Profile{}, err
	}

	scores := make(map[category.Category]float64, len(category.All()))
	signals := make(map[category.Category]model.SignalRecord, len(category.All()))
	for _, cat := range category.All() {
		rec := a.signals.Get(ctx, developerID, cat)
		signals[cat] = rec
		scores[cat] = a.scorer.Score(rec)
	}

	return Profile{
		Developer: dev,
		Scores:    scores,
		Signals:   signals,
	}, nil
}

// GetDetail returns the profile plus the developer's issues grouped by
// category.
func (a *Aggregator) GetDetail(ctx context.Context, developerID string) (Detail, error) {
	p, err := a.GetProfile(ctx, developerID)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{
		Profile:            p,
		OpenByCategory:     make(map[category.Category][]model.Issue),
		ResolvedByCategory: make(map[category.Category][]model.Issue),
	}
	for _, is := range a.assignedTo(ctx, developerID) {
		if is.Status == model.StatusResolved {
			detail.ResolvedByCategory[is.Category] = append(detail.ResolvedByCategory[is.Category], is)
		} else {
			detail.OpenByCategory[is.Category] = append(detail.OpenByCategory[is.Category], is)
		}
	}
	return detail, nil
}

// IssuesByStatus lists the developer's issues matching any of the given
// statuses, newest first. An empty filter matches everything.
func (a *Aggregator) IssuesByStatus(ctx context.Context, developerID string, statuses ...model.Status) ([]model.Issue, error) {
	if _, err := a.developers.Get(ctx, developerID); err != nil {
		return nil, err
	}

	wanted := make(map[model.Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	var out []model.Issue
	for _, is := range a.assignedTo(ctx, developerID) {
		if len(wanted) > 0 {
			if _, ok := wanted[is.Status]; !ok {
				continue
			}
		}
		out = append(out, is)
	}
	return out, nil
}

// assignedTo scans the registry for the developer's issues, newest
// first with id as tie-break so the order is stable.
func (a *Aggregator) assignedTo(ctx context.Context, developerID string) []model.Issue {
	var out []model.Issue
	for _, is := range a.issues.List(ctx) {
		if is.AssignedTo == developerID {
			out = append(out, is)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
