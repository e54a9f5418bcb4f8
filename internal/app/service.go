// Package service provides the core business service that implements
// the operation set consumed by the HTTP API: issue submission,
// lifecycle transitions, profile and dashboard queries, and activity
// ingestion.
package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/okian/triage/internal/adapters/mq/queue"
	"github.com/okian/triage/internal/adapters/mq/worker"
	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/dashboard"
	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/classify"
	"github.com/okian/triage/internal/domain/dedupe"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/rank"
	"github.com/okian/triage/internal/domain/scoring"
	"github.com/okian/triage/internal/profile"
	"github.com/okian/triage/internal/registry"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWorkerCount sets the number of activity workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithQueueSize bounds the activity queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize bounds the activity dedupe cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithShardCount sets the signal store shard count.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithTopK sets the shortlist length attached to new issues.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithScoreWeights sets the scoring weights for the two counters.
func WithScoreWeights(resolved, commit float64) Option {
	return func(s *Service) {
		s.resolvedWeight = resolved
		s.commitWeight = commit
	}
}

// WithSaturation sets the scoring saturation constant.
func WithSaturation(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.saturation = k
		}
	}
}

// WithClassifier injects a classifier implementation. The default is
// the in-process keyword classifier.
func WithClassifier(c classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// Service owns the stores, the registry, and the activity pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components, built on Start.
	signals    *repository.SignalStore
	issues     *repository.IssueStore
	developers *repository.DeveloperStore
	reg        *registry.Registry
	profiles   *profile.Aggregator
	board      *dashboard.ReadModel
	classifier classify.Classifier
	deduper    dedupe.Deduper
	events     queue.Queue
	pool       *worker.Pool

	// Configuration.
	workerCount    int
	queueSize      int
	dedupeSize     int
	shardCount     int
	topK           int
	resolvedWeight float64
	commitWeight   float64
	saturation     float64

	started bool
	log     logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      10_000,
		dedupeSize:     50_000,
		shardCount:     8,
		topK:           3,
		resolvedWeight: 0.7,
		commitWeight:   0.3,
		saturation:     5.0,
		log:            nil, // resolved on Start
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and wires the components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	s.signals = repository.NewSignalStore(repository.WithShardCount(s.shardCount))
	s.issues = repository.NewIssueStore()
	s.developers = repository.NewDeveloperStore()

	if s.classifier == nil {
		s.classifier = classify.NewKeywordClassifier()
	}

	scorer := scoring.New(
		scoring.WithWeights(s.resolvedWeight, s.commitWeight),
		scoring.WithSaturation(s.saturation),
	)
	ranker := rank.New(scorer, rank.WithTopK(s.topK))

	s.reg = registry.New(s.issues, s.developers, s.signals, s.classifier, ranker,
		registry.WithLogger(s.log.Named("registry")),
	)
	s.profiles = profile.New(s.issues, s.developers, s.signals, scorer)
	s.board = dashboard.New(s.issues)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.events = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.events, s.signals)
	s.pool.Start(ctx)

	s.started = true
	s.log.Info(ctx, "routing service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("shards", s.shardCount),
		logger.Int("topK", s.topK),
	)
	return nil
}

// Stop gracefully shuts down the activity pipeline.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	s.started = false
	s.log.Info(ctx, "routing service stopped")
}

// SubmitIssue classifies and stores a new issue with its shortlist.
func (s *Service) SubmitIssue(ctx context.Context, title, description, submitterID string) (model.Issue, error) {
	return s.reg.Submit(ctx, title, description, submitterID)
}

// AssignIssue moves a pending issue to the given developer.
func (s *Service) AssignIssue(ctx context.Context, issueID, developerID string) (model.Issue, error) {
	return s.reg.Assign(ctx, issueID, developerID)
}

// StartWork marks the assignee as working on the issue.
func (s *Service) StartWork(ctx context.Context, issueID, callerID string) (model.Issue, error) {
	return s.reg.StartWork(ctx, issueID, callerID)
}

// MarkDone records the assignee's completion claim.
func (s *Service) MarkDone(ctx context.Context, issueID, callerID string) (model.Issue, error) {
	return s.reg.MarkDone(ctx, issueID, callerID)
}

// ResolveIssue confirms completion; idempotent.
func (s *Service) ResolveIssue(ctx context.Context, issueID string) (model.Issue, error) {
	return s.reg.Resolve(ctx, issueID)
}

// GetIssue returns one issue.
func (s *Service) GetIssue(ctx context.Context, issueID string) (model.Issue, error) {
	return s.reg.Get(ctx, issueID)
}

// RegisterDeveloper creates or updates a roster entry.
func (s *Service) RegisterDeveloper(ctx context.Context, id, displayName string) (model.Developer, error) {
	return s.developers.Ensure(ctx, id, displayName), nil
}

// GetDeveloperProfile returns the scores and grouped issue lists for a
// developer.
func (s *Service) GetDeveloperProfile(ctx context.Context, developerID string) (profile.Detail, error) {
	return s.profiles.GetDetail(ctx, developerID)
}

// DeveloperIssuesByStatus lists a developer's issues filtered by status.
func (s *Service) DeveloperIssuesByStatus(ctx context.Context, developerID string, statuses ...model.Status) ([]model.Issue, error) {
	return s.profiles.IssuesByStatus(ctx, developerID, statuses...)
}

// ListIssues returns ordered issue summaries, optionally filtered.
func (s *Service) ListIssues(ctx context.Context, statuses ...model.Status) []model.Issue {
	return s.board.ListIssues(ctx, statuses...)
}

// Summarize returns per-status counts.
func (s *Service) Summarize(ctx context.Context) dashboard.Summary {
	return s.board.Summarize(ctx)
}

// Recommend returns the live top-ranked developers for a category,
// independent of any issue.
func (s *Service) Recommend(ctx context.Context, cat category.Category) []model.Candidate {
	return s.reg.Recommend(ctx, cat)
}

// PredictCategory exposes the classifier for category previews.
func (s *Service) PredictCategory(ctx context.Context, text string) (category.Category, error) {
	return s.classifier.Predict(ctx, text)
}

// SeenAndRecord atomically checks and records an activity event id.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordActivityDuplicate()
	}
	return seen
}

// Unrecord forgets an event id so a failed enqueue can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// EnqueueActivity submits an activity event for asynchronous
// application to the signal store. Returns false on backpressure.
func (s *Service) EnqueueActivity(ctx context.Context, e model.ActivityEvent) bool {
	ok := s.events.Enqueue(ctx, e)
	if ok {
		metrics.UpdateQueueDepth(s.events.Len(ctx))
	}
	return ok
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"topK":        s.topK,
	}
	if s.started {
		stats["queueLength"] = s.events.Len(ctx)
		stats["issues"] = s.issues.Count(ctx)
		stats["developers"] = s.developers.Count(ctx)
		stats["signalPairs"] = s.signals.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueDepth(s.events.Len(ctx))
		metrics.UpdateTrackedDevelopers(s.developers.Count(ctx))
		metrics.UpdateTrackedIssues(s.issues.Count(ctx))
	}
	return stats
}
