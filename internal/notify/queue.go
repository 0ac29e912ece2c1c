package notify

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

type Queue interface {
	Push(ctx context.Context, jobs ...Job) error
	// Pop blocks until a job is available, the queue is closed or ctx is done.
	Pop(ctx context.Context) (Job, error)
	Close() error
}

// MemoryQueue is an in-process buffered queue used when Redis is not configured.
type MemoryQueue struct {
	mu        sync.Mutex
	jobs      chan Job
	closed    chan struct{}
	closeOnce sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	return &MemoryQueue{
		jobs:   make(chan Job, size),
		closed: make(chan struct{}),
	}
}

// Push enqueues all jobs or none of them.
func (q *MemoryQueue) Push(ctx context.Context, jobs ...Job) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if cap(q.jobs)-len(q.jobs) < len(jobs) {
		return ErrQueueFull
	}
	// Pushes are serialised by mu and Pop only drains, so these sends never block.
	for _, job := range jobs {
		q.jobs <- job
	}
	return nil
}

func (q *MemoryQueue) Pop(ctx context.Context) (Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-q.closed:
		return Job{}, ErrQueueClosed
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.closed) })
	return nil
}
