package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"image-job-service/internal/entity"
	"image-job-service/internal/service"
)

func TestMemoryQueue_BoundedFIFO(t *testing.T) {
	ctx := context.Background()
	q := service.NewMemoryQueue(2)

	if err := q.Enqueue(ctx, "a"); err != nil {
		t.Fatalf("enqueue a: %v", err)
	}
	if err := q.Enqueue(ctx, "b"); err != nil {
		t.Fatalf("enqueue b: %v", err)
	}
	if err := q.Enqueue(ctx, "c"); !errors.Is(err, entity.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	for _, want := range []string{"a", "b"} {
		got, err := q.ClaimBlocking(ctx, time.Second)
		if err != nil || got != want {
			t.Fatalf("expected %s, got %s (%v)", want, got, err)
		}
	}
}

func TestMemoryQueue_EnqueueCancelledContext(t *testing.T) {
	q := service.NewMemoryQueue(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a cancelled request is always rejected, even with room in the queue
	for i := 0; i < 100; i++ {
		if err := q.Enqueue(ctx, "job"); !errors.Is(err, context.Canceled) {
			t.Fatalf("attempt %d: expected context.Canceled, got %v", i, err)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

func TestMemoryQueue_ClaimTimeout(t *testing.T) {
	q := service.NewMemoryQueue(1)
	_, err := q.ClaimBlocking(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, service.ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestMemoryQueue_ClaimCancelled(t *testing.T) {
	q := service.NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.ClaimBlocking(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func newRedisQueue(t *testing.T, capacity int) (*service.RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return service.NewRedisQueue(rdb, "jobs:queue", "jobs:processing", capacity), mr
}

func TestRedisQueue_ClaimMovesToProcessingAndAck(t *testing.T) {
	ctx := context.Background()
	q, mr := newRedisQueue(t, 10)

	if err := q.Enqueue(ctx, "job-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, "job-2"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	id, err := q.ClaimBlocking(ctx, time.Second)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if id != "job-1" {
		t.Fatalf("expected FIFO order, got %s", id)
	}

	processing, _ := mr.List("jobs:processing")
	if len(processing) != 1 || processing[0] != "job-1" {
		t.Fatalf("expected job-1 in processing, got %v", processing)
	}

	if err := q.Ack(ctx, id); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if mr.Exists("jobs:processing") {
		processing, _ = mr.List("jobs:processing")
		if len(processing) != 0 {
			t.Fatalf("expected processing list to be empty, got %v", processing)
		}
	}
}

func TestRedisQueue_Capacity(t *testing.T) {
	ctx := context.Background()
	q, _ := newRedisQueue(t, 1)

	if err := q.Enqueue(ctx, "a"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, "b"); !errors.Is(err, entity.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestScopedKey(t *testing.T) {
	if got := service.ScopedKey("imagejobs:queue", "a1"); got != "imagejobs:queue:a1" {
		t.Fatalf("unexpected scoped key %s", got)
	}
	if got := service.ScopedKey("imagejobs:queue", ""); got != "imagejobs:queue" {
		t.Fatalf("empty instance must keep the base key, got %s", got)
	}
}
