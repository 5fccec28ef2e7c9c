package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"image-job-service/internal/entity"
	"image-job-service/internal/provider"
	"image-job-service/internal/refimage"
)

type JobRepo interface {
	Get(ctx context.Context, id uuid.UUID) (entity.Job, bool)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error
	SetResultDone(ctx context.Context, id uuid.UUID, images []string) error
	SetResultError(ctx context.Context, id uuid.UUID, errText string) error
}

// Processor carries one job from queued to a terminal state.
type Processor struct {
	repo      JobRepo
	generator provider.Generator
	timeout   time.Duration
	log       zerolog.Logger
}

func NewProcessor(repo JobRepo, generator provider.Generator, timeout time.Duration, log zerolog.Logger) *Processor {
	return &Processor{repo: repo, generator: generator, timeout: timeout, log: log}
}

// Process returns an error only when the job could not be driven through
// its lifecycle at all (unknown id, already claimed). Generation failures
// are recorded on the job and reported as the returned error too.
func (p *Processor) Process(ctx context.Context, jobID string) error {
	start := time.Now()

	id, err := uuid.Parse(jobID)
	if err != nil {
		p.log.Warn().Str("job_id", jobID).Err(err).Msg("worker: unparsable job id")
		return err
	}

	if err := p.repo.UpdateStatus(ctx, id, entity.StatusProcessing); err != nil {
		p.log.Warn().Str("job_id", jobID).Err(err).Msg("worker: update_status=processing failed")
		return err
	}

	job, ok := p.repo.Get(ctx, id)
	if !ok {
		// only possible if the record vanished between the two calls
		p.log.Error().Str("job_id", jobID).Msg("worker: job disappeared while processing")
		return entity.ErrNotFound
	}

	p.log.Info().Str("job_id", jobID).Int("count", job.Count).Msg("worker: status=processing")

	images, genErr := p.generate(ctx, job)
	if genErr != nil {
		msg := genErr.Error()
		if err := p.repo.SetResultError(ctx, id, msg); err != nil {
			p.log.Error().Str("job_id", jobID).Err(err).Msg("worker: set_error failed")
		}
		p.log.Warn().
			Str("job_id", jobID).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("error", msg).
			Msg("worker: status=error")
		return genErr
	}

	if err := p.repo.SetResultDone(ctx, id, images); err != nil {
		p.log.Error().Str("job_id", jobID).Err(err).Msg("worker: set_done failed")
		return err
	}

	p.log.Info().
		Str("job_id", jobID).
		Int("images", len(images)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("worker: status=done")
	return nil
}

// generate runs the provider under the per-job deadline and turns every
// failure mode, panics included, into an error with a readable message.
func (p *Processor) generate(ctx context.Context, job entity.Job) (srcs []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			srcs = nil
			err = fmt.Errorf("generation failed: internal error: %v", r)
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	refs, skipped := refimage.Decode(job.References)
	if skipped > 0 {
		p.log.Warn().Str("job_id", job.ID.String()).Int("skipped", skipped).Msg("worker: skipped malformed references")
	}

	images, err := p.generator.Generate(ctx, provider.Request{
		JobID:      job.ID.String(),
		Prompt:     job.Prompt,
		Format:     job.Format,
		Count:      job.Count,
		References: refs,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("generation timed out after %s", p.timeout)
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	for _, img := range images {
		if img.URL == "" && len(img.Data) == 0 {
			continue
		}
		srcs = append(srcs, img.Src())
		if len(srcs) == job.Count {
			break
		}
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("generation failed: %w", provider.ErrNoImages)
	}
	return srcs, nil
}
