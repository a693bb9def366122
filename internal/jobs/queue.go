package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// envelope carries a job together with the context it runs under.
type envelope struct {
	job Job
	ctx context.Context
}

// Queue is a bounded FIFO of jobs.
type Queue struct {
	mu     sync.RWMutex
	items  chan envelope
	closed bool
	logger *slog.Logger
}

// NewQueue creates a queue holding at most size jobs.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		items:  make(chan envelope, size),
		logger: logger,
	}
}

// Enqueue adds a job without blocking. The job later runs under ctx. It
// fails with ErrQueueFull when the buffer is full and ErrQueueClosed after
// Close.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	e := envelope{job: job, ctx: ctx}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- e:
		q.logger.Debug("job enqueued",
			"job", e.job.Name(),
			"queue_len", len(q.items),
			"queue_cap", cap(q.items))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.items))
	}
}

// Close stops accepting jobs. Jobs already queued are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.items)
		q.logger.Info("job queue closed")
	}
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) channel() <-chan envelope {
	return q.items
}
