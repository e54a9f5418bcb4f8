// Package rank produces the ordered shortlist of candidate developers
// for a category.
package rank

import (
	"sort"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/scoring"
)

// defaultTopK bounds the shortlist attached to a new issue.
const defaultTopK = 3

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithTopK sets the shortlist length.
func WithTopK(k int) Option {
	return func(r *Ranker) {
		if k > 0 {
			r.topK = k
		}
	}
}

// Ranker orders a roster snapshot by expertise score.
type Ranker struct {
	scorer *scoring.Scorer
	topK   int
}

// New creates a Ranker backed by the given scorer.
func New(scorer *scoring.Scorer, opts ...Option) *Ranker {
	r := &Ranker{
		scorer: scorer,
		topK:   defaultTopK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every developer in the roster and returns at most K
// candidates ordered by score descending, ties broken by developer id
// ascending. The ordering is fully determined by the roster snapshot:
// two calls over the same snapshot return identical lists. An empty
// roster yields an empty list, not an error.
//
// Rosters are organization-sized, so a plain O(n log n) sort beats the
// bookkeeping of a top-K heap.
func (r *Ranker) Rank(roster map[string]model.SignalRecord) []model.Candidate {
	if len(roster) == 0 {
		return nil
	}

	candidates := make([]model.Candidate, 0, len(roster))
	for id, rec := range roster {
		candidates = append(candidates, model.Candidate{
			DeveloperID: id,
			Score:       r.scorer.Score(rec),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].DeveloperID < candidates[j].DeveloperID
	})

	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}
	return candidates
}
