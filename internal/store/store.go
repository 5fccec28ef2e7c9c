// Package store holds the in-memory job table and the history log.
//
// A single mutex protects both, so a reader never sees a job whose fields
// disagree (e.g. done without images) and history order matches the order
// in which jobs reached done. Provider calls never happen under this lock.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"image-job-service/internal/entity"
)

type Store struct {
	mu      sync.RWMutex
	jobs    map[uuid.UUID]*entity.Job
	history *History
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides time.Now, used by tests that exercise eviction.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(historyLimit int, opts ...Option) *Store {
	s := &Store{
		jobs:    make(map[uuid.UUID]*entity.Job),
		history: NewHistory(historyLimit),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(ctx context.Context, prompt, format string, count int, refs []entity.Reference) (uuid.UUID, error) {
	j, err := entity.NewJob(prompt, format, count, refs, s.now())
	if err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// uuid v4 collisions are not expected, but never overwrite a live record
	for {
		if _, exists := s.jobs[j.ID]; !exists {
			break
		}
		j.ID = uuid.New()
	}
	s.jobs[j.ID] = &j
	return j.ID, nil
}

// Get returns a snapshot of the job. ok is false for unknown ids.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (entity.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return entity.Job{}, false
	}
	return j.Clone(), true
}

// UpdateStatus moves a queued job to processing. Terminal states are set
// through SetResultDone and SetResultError so their fields change together.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.JobStatus) error {
	if status != entity.StatusProcessing {
		return fmt.Errorf("%w: use SetResultDone/SetResultError for %s", entity.ErrInvalidTransition, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.transition(id, status)
	if err != nil {
		return err
	}
	started := s.now()
	j.StartedAt = &started
	return nil
}

// SetResultDone marks the job done and appends it to the history log in
// the same critical section.
func (s *Store) SetResultDone(ctx context.Context, id uuid.UUID, images []string) error {
	if len(images) == 0 {
		return fmt.Errorf("%w: done requires at least one image", entity.ErrInvalidTransition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.transition(id, entity.StatusDone)
	if err != nil {
		return err
	}
	finished := s.now()
	j.Images = append([]string{}, images...)
	j.Error = nil
	j.FinishedAt = &finished

	s.history.Append(entity.NewHistoryEntry(*j, finished))
	return nil
}

func (s *Store) SetResultError(ctx context.Context, id uuid.UUID, errText string) error {
	if errText == "" {
		errText = "generation failed"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.transition(id, entity.StatusError)
	if err != nil {
		return err
	}
	finished := s.now()
	j.Images = []string{}
	j.Error = &errText
	j.FinishedAt = &finished
	return nil
}

// Discard removes a job that was never picked up. It is used to roll back a
// submission the queue refused.
func (s *Store) Discard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return entity.ErrNotFound
	}
	if j.Status != entity.StatusQueued {
		return fmt.Errorf("%w: cannot discard %s job", entity.ErrInvalidTransition, j.Status)
	}
	delete(s.jobs, id)
	return nil
}

func (s *Store) History(ctx context.Context) []entity.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Entries()
}

// EvictFinished drops terminal jobs that finished before cutoff and returns
// how many were removed. Queued and processing jobs are kept.
func (s *Store) EvictFinished(ctx context.Context, cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, j := range s.jobs {
		if !j.Status.Terminal() || j.FinishedAt == nil {
			continue
		}
		if j.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// transition must be called with s.mu held.
func (s *Store) transition(id uuid.UUID, to entity.JobStatus) (*entity.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if !entity.CanTransition(j.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, j.Status, to)
	}
	j.Status = to
	return j, nil
}
