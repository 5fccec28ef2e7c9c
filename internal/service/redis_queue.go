package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"image-job-service/internal/entity"
)

// enqueueScript pushes only while the list is below capacity, so the length
// check and the push are atomic. ARGV[2] == 0 means unbounded.
var enqueueScript = redis.NewScript(`
local cap = tonumber(ARGV[2])
if cap > 0 and redis.call("LLEN", KEYS[1]) >= cap then
	return 0
end
redis.call("LPUSH", KEYS[1], ARGV[1])
return 1
`)

// RedisQueue is a reliable list queue.
// Claim: BRPOPLPUSH queue -> processing
// Ack:   LREM from processing
//
// Claimed ids are never pushed back to the queue: a job that already went
// to processing must not be picked up a second time.
type RedisQueue struct {
	rdb           *redis.Client
	queueKey      string
	processingKey string
	capacity      int64
}

// ScopedKey suffixes base with the process instance id. Jobs live in the
// memory of the process that accepted them, so each process claims only
// from its own list.
func ScopedKey(base, instance string) string {
	if instance == "" {
		return base
	}
	return base + ":" + instance
}

func NewRedisQueue(rdb *redis.Client, queueKey, processingKey string, capacity int) *RedisQueue {
	return &RedisQueue{
		rdb:           rdb,
		queueKey:      queueKey,
		processingKey: processingKey,
		capacity:      int64(capacity),
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	ok, err := enqueueScript.Run(ctx, q.rdb, []string{q.queueKey}, jobID, q.capacity).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return entity.ErrQueueFull
	}
	return nil
}

// ClaimBlocking waits up to timeout for an id. A non-positive timeout is
// treated as one second so the caller can still observe ctx cancellation.
func (q *RedisQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	id, err := q.rdb.BRPopLPush(ctx, q.queueKey, q.processingKey, timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrQueueEmpty
		}
		return "", err
	}
	return id, nil
}

func (q *RedisQueue) Ack(ctx context.Context, jobID string) error {
	return q.rdb.LRem(ctx, q.processingKey, 1, jobID).Err()
}

var _ Queue = (*RedisQueue)(nil)
