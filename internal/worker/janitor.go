package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Evicter interface {
	EvictFinished(ctx context.Context, cutoff time.Time) int
}

// Janitor periodically drops finished jobs older than ttl so the job table
// does not grow without bound.
type Janitor struct {
	store    Evicter
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewJanitor(store Evicter, ttl, interval time.Duration, log zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// Run sweeps every interval until ctx is done. A zero ttl disables it.
func (j *Janitor) Run(ctx context.Context) {
	if j.ttl <= 0 {
		j.log.Info().Msg("janitor disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

func (j *Janitor) Sweep(ctx context.Context) int {
	n := j.store.EvictFinished(ctx, j.now().Add(-j.ttl))
	if n > 0 {
		j.log.Info().Int("evicted", n).Dur("ttl", j.ttl).Msg("janitor: evicted finished jobs")
	}
	return n
}
