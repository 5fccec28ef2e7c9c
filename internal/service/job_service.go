package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"image-job-service/internal/entity"
)

// JobStore is the port implemented by store.Store.
type JobStore interface {
	Create(ctx context.Context, prompt, format string, count int, refs []entity.Reference) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (entity.Job, bool)
	Discard(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context) []entity.HistoryEntry
}

// JobQueue is the enqueue half of Queue.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string) error
}

type JobService struct {
	store JobStore
	queue JobQueue
	log   zerolog.Logger
}

func NewJobService(store JobStore, queue JobQueue, log zerolog.Logger) *JobService {
	return &JobService{store: store, queue: queue, log: log}
}

type SubmitRequest struct {
	Prompt     string
	Format     string
	Count      int
	References []entity.Reference
}

// Submit validates and records a job, then hands it to the queue. If the
// queue refuses it the record is discarded so no job is left queued forever.
func (s *JobService) Submit(ctx context.Context, req SubmitRequest) (uuid.UUID, error) {
	id, err := s.store.Create(ctx, req.Prompt, req.Format, req.Count, req.References)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.queue.Enqueue(ctx, id.String()); err != nil {
		if dErr := s.store.Discard(ctx, id); dErr != nil {
			s.log.Error().Err(dErr).Str("job_id", id.String()).Msg("discard after enqueue failure")
		}
		if errors.Is(err, entity.ErrQueueFull) {
			return uuid.Nil, entity.ErrQueueFull
		}
		return uuid.Nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.log.Info().
		Str("job_id", id.String()).
		Int("count", entity.ClampCount(req.Count)).
		Int("references", len(req.References)).
		Msg("job queued")
	return id, nil
}

// StatusView is the polling snapshot of a job. Known is false for ids the
// store does not have (never created, malformed, or evicted).
type StatusView struct {
	Known      bool
	ID         string
	Status     entity.JobStatus
	Images     []string
	Error      *string
	Prompt     string
	Format     string
	Count      int
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (s *JobService) Status(ctx context.Context, rawID string) StatusView {
	unknown := StatusView{Status: entity.StatusUnknown, Images: []string{}, ID: rawID}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return unknown
	}
	j, ok := s.store.Get(ctx, id)
	if !ok {
		return unknown
	}

	return StatusView{
		Known:      true,
		ID:         j.ID.String(),
		Status:     j.Status,
		Images:     j.Images,
		Error:      j.Error,
		Prompt:     j.Prompt,
		Format:     j.Format,
		Count:      j.Count,
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}

func (s *JobService) History(ctx context.Context) []entity.HistoryEntry {
	return s.store.History(ctx)
}
