package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"image-job-service/internal/service"
)

// Pool runs a fixed number of workers fed by a single claiming loop.
type Pool struct {
	queue      service.Queue
	processor  *Processor
	workers    int
	claimDelay time.Duration
	log        zerolog.Logger
}

type PoolOption func(*Pool)

// WithClaimTimeout bounds one blocking claim. A blocking Redis pop ignores
// cancellation, so shutdown waits up to this long (Redis rounds below one
// second up to one second).
func WithClaimTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d > 0 {
			p.claimDelay = d
		}
	}
}

func NewPool(queue service.Queue, processor *Processor, workers int, log zerolog.Logger, opts ...PoolOption) *Pool {
	if workers <= 0 {
		workers = 4
	}
	p := &Pool{
		queue:      queue,
		processor:  processor,
		workers:    workers,
		claimDelay: time.Second,
		log:        log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run blocks until ctx is cancelled, then waits for in-flight jobs.
func (p *Pool) Run(ctx context.Context) {
	p.log.Info().Int("workers", p.workers).Msg("worker pool started")

	jobCh := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for jobID := range jobCh {
				// a job in flight finishes even if shutdown begins
				jobCtx := context.WithoutCancel(ctx)
				if err := p.processor.Process(jobCtx, jobID); err != nil {
					p.log.Debug().Int("worker", n).Str("job_id", jobID).Err(err).Msg("process job")
				}
				if ackErr := p.queue.Ack(jobCtx, jobID); ackErr != nil {
					p.log.Error().Int("worker", n).Str("job_id", jobID).Err(ackErr).Msg("ack job")
				}
			}
		}(i + 1)
	}

	defer func() {
		close(jobCh)
		wg.Wait()
		p.log.Info().Msg("worker pool stopped")
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		jobID, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
		if err != nil {
			if !errors.Is(err, service.ErrQueueEmpty) && ctx.Err() == nil {
				p.log.Error().Err(err).Msg("claim job")
				sleepCtx(ctx, time.Second)
			}
			continue
		}
		select {
		case jobCh <- jobID:
		case <-ctx.Done():
			// claimed but never started; still queued in the store
			p.log.Warn().Str("job_id", jobID).Msg("shutdown before job started")
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
