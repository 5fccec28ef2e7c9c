package service

import (
	"context"
	"errors"
	"time"

	"image-job-service/internal/entity"
)

// ErrQueueEmpty is returned by ClaimBlocking when nothing arrived in time.
var ErrQueueEmpty = errors.New("queue empty")

// Queue carries job ids from submission to the worker pool.
type Queue interface {
	// Enqueue returns entity.ErrQueueFull when the queue is at capacity.
	Enqueue(ctx context.Context, jobID string) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, jobID string) error
}

// MemoryQueue is a bounded in-process queue. Enqueue never blocks; a full
// queue rejects the submission.
type MemoryQueue struct {
	ch chan string
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryQueue{ch: make(chan string, capacity)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- jobID:
		return nil
	default:
		return entity.ErrQueueFull
	}
}

func (q *MemoryQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case id := <-q.ch:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer:
		return "", ErrQueueEmpty
	}
}

func (q *MemoryQueue) Ack(ctx context.Context, jobID string) error { return nil }

func (q *MemoryQueue) Len() int { return len(q.ch) }

var _ Queue = (*MemoryQueue)(nil)
