// Package registry owns issue records and runs the lifecycle state
// machine:
//
//	pending -> assigned -> in_progress -> done -> resolved
//
// Every transition is a single atomic read-modify-write under the
// issue's lock; transitions on different issues never contend. The
// registry is the only component that mutates an issue.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/classify"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/rank"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDFunc overrides issue id minting, used by tests.
func WithIDFunc(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// Registry coordinates the issue stores, the classifier, and the
// ranker.
type Registry struct {
	issues     *repository.IssueStore
	developers *repository.DeveloperStore
	signals    *repository.SignalStore
	classifier classify.Classifier
	ranker     *rank.Ranker

	now   func() time.Time
	newID func() string
	log   logger.Logger
}

// New creates a Registry over the given collaborators.
func New(
	issues *repository.IssueStore,
	developers *repository.DeveloperStore,
	signals *repository.SignalStore,
	classifier classify.Classifier,
	ranker *rank.Ranker,
	opts ...Option,
) *Registry {
	r := &Registry{
		issues:     issues,
		developers: developers,
		signals:    signals,
		classifier: classifier,
		ranker:     ranker,
		now:        time.Now,
		newID:      func() string { return "ISSUE-" + uuid.New().String() },
		log:        logger.Named("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit creates a new pending issue: the classifier picks the
// category, the ranker snapshots the top candidates, and the record is
// stored. The shortlist is frozen at this point even if scores change
// later.
func (r *Registry) Submit(ctx context.Context, title, description, submitterID string) (model.Issue, error) {
	if strings.TrimSpace(description) == "" {
		return model.Issue{}, fmt.Errorf("description must not be empty: %w", ErrValidation)
	}

	text := strings.TrimSpace(title + "\n" + description)
	cat, err := r.classifier.Predict(ctx, text)
	if err != nil {
		return model.Issue{}, fmt.Errorf("predict category: %w", err)
	}

	rankStart := time.Now()
	roster := r.signals.Snapshot(ctx, cat)
	candidates := r.ranker.Rank(roster)
	metrics.ObserveRankingDuration(time.Since(rankStart).Seconds())

	issue := model.Issue{
		ID:            r.newID(),
		Title:         title,
		Description:   description,
		Category:      cat,
		Status:        model.StatusPending,
		SubmittedBy:   submitterID,
		SubmittedAt:   r.now(),
		TopCandidates: candidates,
	}
	if err := r.issues.Put(ctx, issue); err != nil {
		return model.Issue{}, fmt.Errorf("store issue: %w", err)
	}

	metrics.RecordIssueSubmitted(cat.String())
	r.log.Info(ctx, "issue submitted",
		logger.String("issue", issue.ID),
		logger.String("category", cat.String()),
		logger.Int("candidates", len(candidates)),
	)
	return issue, nil
}

// Recommend ranks the current roster for a category on demand. Unlike
// the shortlist frozen on an issue at submission, the result reflects
// the live counters at call time.
func (r *Registry) Recommend(ctx context.Context, cat category.Category) []model.Candidate {
	roster := r.signals.Snapshot(ctx, cat)
	return r.ranker.Rank(roster)
}

// Assign moves a pending issue to assigned. The developer is created on
// first reference. Assigning a non-pending issue is rejected rather
// than silently overwritten; reassignment is not a transition of this
// machine.
func (r *Registry) Assign(ctx context.Context, issueID, developerID string) (model.Issue, error) {
	dev := r.developers.Ensure(ctx, developerID, "")

	updated, err := r.issues.Update(ctx, issueID, func(is model.Issue) (model.Issue, error) {
		if is.Status != model.StatusPending {
			return is, rejected("assign", is.Status)
		}
		is.Status = model.StatusAssigned
		is.AssignedTo = dev.ID
		is.AssignedAt = r.now()
		return is, nil
	})
	if err != nil {
		return model.Issue{}, err
	}

	r.developers.AddIssueRef(ctx, dev.ID, issueID)
	// The ref lands after the transition commits and the issue lock is
	// released, so a racing done+resolve may already have removed it.
	// Re-check the stored status and drop the ref if the issue closed
	// in that window; RemoveIssueRef is idempotent.
	if cur, err := r.issues.Get(ctx, issueID); err == nil && cur.Status == model.StatusResolved {
		r.developers.RemoveIssueRef(ctx, dev.ID, issueID)
	}
	metrics.RecordTransition(model.StatusAssigned.String())
	r.log.Info(ctx, "issue assigned",
		logger.String("issue", issueID),
		logger.String("developer", dev.ID),
	)
	return updated, nil
}

// StartWork moves an assigned issue to in_progress. Only the assignee
// may start work.
func (r *Registry) StartWork(ctx context.Context, issueID, callerID string) (model.Issue, error) {
	updated, err := r.issues.Update(ctx, issueID, func(is model.Issue) (model.Issue, error) {
		if is.Status != model.StatusAssigned {
			return is, rejected("start", is.Status)
		}
		if is.AssignedTo != callerID {
			metrics.RecordTransitionRejected("forbidden")
			return is, fmt.Errorf("start by %s: %w", callerID, ErrForbidden)
		}
		is.Status = model.StatusInProgress
		return is, nil
	})
	if err != nil {
		return model.Issue{}, err
	}

	metrics.RecordTransition(model.StatusInProgress.String())
	return updated, nil
}

// MarkDone records the assignee's "I finished" claim. It deliberately
// does not touch the signal store: credit waits for the confirmed
// Resolve so premature claims earn nothing.
func (r *Registry) MarkDone(ctx context.Context, issueID, callerID string) (model.Issue, error) {
	updated, err := r.issues.Update(ctx, issueID, func(is model.Issue) (model.Issue, error) {
		if is.Status != model.StatusAssigned && is.Status != model.StatusInProgress {
			return is, rejected("done", is.Status)
		}
		if is.AssignedTo != callerID {
			metrics.RecordTransitionRejected("forbidden")
			return is, fmt.Errorf("done by %s: %w", callerID, ErrForbidden)
		}
		is.Status = model.StatusDone
		return is, nil
	})
	if err != nil {
		return model.Issue{}, err
	}

	metrics.RecordTransition(model.StatusDone.String())
	return updated, nil
}

// Resolve confirms a done issue and credits the assignee's resolved
// counter exactly once. Resolving an already-resolved issue is a no-op
// returning the stored issue, so retried calls can never double-credit.
func (r *Registry) Resolve(ctx context.Context, issueID string) (model.Issue, error) {
	credited := false
	updated, err := r.issues.Update(ctx, issueID, func(is model.Issue) (model.Issue, error) {
		switch is.Status {
		case model.StatusResolved:
			return is, nil
		case model.StatusDone:
			is.Status = model.StatusResolved
			is.ResolvedAt = r.now()
			credited = true
			return is, nil
		default:
			return is, rejected("resolve", is.Status)
		}
	})
	if err != nil {
		return model.Issue{}, err
	}
	if !credited {
		return updated, nil
	}

	// credited is true for exactly one caller per issue: the transition
	// happened under the issue's lock.
	r.signals.Increment(ctx, updated.AssignedTo, updated.Category, model.SignalResolved)
	r.developers.RemoveIssueRef(ctx, updated.AssignedTo, issueID)
	metrics.RecordTransition(model.StatusResolved.String())
	r.log.Info(ctx, "issue resolved",
		logger.String("issue", issueID),
		logger.String("developer", updated.AssignedTo),
		logger.String("category", updated.Category.String()),
	)
	return updated, nil
}

// Get returns a copy of one issue.
func (r *Registry) Get(ctx context.Context, issueID string) (model.Issue, error) {
	return r.issues.Get(ctx, issueID)
}

// List returns copies of all issues in unspecified order.
func (r *Registry) List(ctx context.Context) []model.Issue {
	return r.issues.List(ctx)
}

func rejected(op string, from model.Status) error {
	metrics.RecordTransitionRejected("invalid_state")
	return fmt.Errorf("%s from %s: %w", op, from, ErrInvalidState)
}
