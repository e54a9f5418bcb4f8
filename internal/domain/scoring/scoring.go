// Package scoring turns raw activity signals into normalized expertise
// scores.
package scoring

import (
	"math"

	"github.com/okian/triage/internal/domain/model"
)

// Default scoring configuration constants. The weights mirror the
// 70/30 split between resolution history and commit activity.
const (
	defaultResolvedWeight = 0.7
	defaultCommitWeight   = 0.3
	defaultSaturation     = 5.0
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the relative weights of the two counters.
func WithWeights(resolved, commit float64) Option {
	return func(s *Scorer) {
		if resolved >= 0 && commit >= 0 && resolved+commit > 0 {
			s.resolvedWeight = resolved
			s.commitWeight = commit
		}
	}
}

// WithSaturation sets the saturation constant k of f(x) = x/(x+k).
// Smaller k saturates faster.
func WithSaturation(k float64) Option {
	return func(s *Scorer) {
		if k > 0 {
			s.saturation = k
		}
	}
}

// Scorer computes expertise scores in [0,1] from signal records.
// Score is pure: no state, no side effects, fully deterministic, so
// shortlists snapshotted at submission time stay reproducible.
type Scorer struct {
	resolvedWeight float64
	commitWeight   float64
	saturation     float64
}

// New creates a Scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		resolvedWeight: defaultResolvedWeight,
		commitWeight:   defaultCommitWeight,
		saturation:     defaultSaturation,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score combines the counters through a saturating curve. Each extra
// resolved issue or commit is worth less than the previous one, so a
// single prolific developer cannot permanently dominate a category.
// The result is clamped to [0,1] and non-decreasing in each counter.
func (s *Scorer) Score(rec model.SignalRecord) float64 {
	score := s.resolvedWeight*s.saturate(float64(rec.ResolvedCount)) +
		s.commitWeight*s.saturate(float64(rec.CommitCount))
	return clamp01(score)
}

// saturate maps [0, inf) onto [0, 1) with diminishing returns.
func (s *Scorer) saturate(x float64) float64 {
	return x / (x + s.saturation)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
