// Package queue buffers externally-reported activity events between
// the HTTP boundary and the workers that apply them to the signal
// store. Enqueue is non-blocking: a full queue reports backpressure to
// the caller instead of stalling the request.
package queue

import (
	"context"
	"sync"

	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/pkg/metrics"
)

// defaultCapacity bounds the in-memory buffer.
const defaultCapacity = 10_000

// Event is the payload type flowing through the queue.
type Event = model.ActivityEvent

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds an event. Returns false if the queue is full or
	// closed and the event was not accepted.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns the channel workers consume from. It is closed
	// when the queue closes.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of buffered events.
	Len(ctx context.Context) int

	// Close stops accepting events and closes the dequeue channel once
	// drained by consumers.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the buffer size.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)
	metrics.UpdateQueueDepth(0)
	return q
}

// Enqueue adds an event without blocking.
func (q *InMemoryQueue) Enqueue(_ context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordActivityEnqueueError()
		return false
	}

	select {
	case q.events <- e:
		metrics.UpdateQueueDepth(len(q.events))
		return true
	default:
		metrics.RecordActivityEnqueueError()
		return false
	}
}

// Dequeue returns the consumer channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Event {
	return q.events
}

// Len returns the current buffer depth.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Close stops accepting events. Buffered events remain readable until
// consumers drain the channel.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.events)
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
