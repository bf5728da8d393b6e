// Package queue holds practice attempts waiting to be scored.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/voicepartner/internal/domain/model"
	"github.com/okian/voicepartner/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Attempt is the payload flowing through the queue.
type Attempt = model.Attempt

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an attempt. It never blocks: a full queue returns
	// ErrQueueFull and a closed one ErrQueueClosed.
	Enqueue(ctx context.Context, a Attempt) error

	// Dequeue returns the channel attempts arrive on. It is closed, after
	// the backlog drains, once the queue is closed.
	Dequeue(ctx context.Context) <-chan Attempt

	// Len returns the current number of queued attempts.
	Len(ctx context.Context) int

	// Cap returns the queue capacity.
	Cap() int

	// Close stops new enqueues. Queued attempts stay readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	attempts chan Attempt
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Compile-time interface assertion.
var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.attempts = make(chan Attempt, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an attempt to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Attempt) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue: %w", err)
	}

	select {
	case q.attempts <- a:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.attempts))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return fmt.Errorf("%w: capacity %d", ErrQueueFull, q.capacity)
	}
}

// Dequeue returns the queue's channel. Every caller shares it, so each
// attempt is delivered to exactly one consumer.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Attempt {
	return q.attempts
}

// Len returns the current number of queued attempts.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.attempts)
	metrics.UpdateQueueSize(size)
	return size
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops the queue. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.attempts)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
