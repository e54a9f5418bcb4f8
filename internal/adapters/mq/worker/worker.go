// Package worker consumes activity events off the queue and applies
// them to the signal store.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/triage/internal/domain/category"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/logger"
)

// workerShutdownTimeout bounds how long Shutdown waits per worker.
const workerShutdownTimeout = 5 * time.Second

// Event is what workers read off the queue.
type Event = model.ActivityEvent

// Incrementer applies one activity attribution to the signal store.
type Incrementer interface {
	Increment(ctx context.Context, developerID string, cat category.Category, kind model.SignalKind)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker's name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.log = logger.Named(name)
		}
	}
}

// Worker runs one consume loop.
type Worker struct {
	queue    Queue
	signals  Incrementer
	name     string
	shutdown chan struct{}
	done     chan struct{}
	log      logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(queue Queue, signals Incrementer, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		signals:  signals,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes events until ctx is canceled, the queue closes, or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			w.apply(ctx, e)
		}
	}
}

// apply validates and applies one event. Malformed events are logged
// and dropped; they cannot fail the loop.
func (w *Worker) apply(ctx context.Context, e Event) {
	if e.DeveloperID == "" || !e.Category.Valid() || !e.Kind.Valid() {
		w.log.Warn(ctx, "dropping malformed activity event",
			logger.String("eventID", e.EventID),
			logger.String("developer", e.DeveloperID),
			logger.String("category", e.Category.String()),
		)
		return
	}
	w.signals.Increment(ctx, e.DeveloperID, e.Category, e.Kind)
	w.log.Debug(ctx, "applied activity event",
		logger.String("eventID", e.EventID),
		logger.String("developer", e.DeveloperID),
	)
}

// Shutdown signals the worker to stop and waits for its loop to exit.
func (w *Worker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker %s: %w", w.name, ctx.Err())
	case <-time.After(workerShutdownTimeout):
		return fmt.Errorf("worker %s: shutdown timed out", w.name)
	}
}
