package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
	StatusUnknown    JobStatus = "unknown"
)

const (
	MinPromptLength = 10
	MinCount        = 1
	MaxCount        = 4
	MaxReferences   = 10
)

// validTransitions is the whole lifecycle: queued -> processing -> done|error.
var validTransitions = map[JobStatus]map[JobStatus]bool{
	StatusQueued: {
		StatusProcessing: true,
	},
	StatusProcessing: {
		StatusDone:  true,
		StatusError: true,
	},
}

func CanTransition(from, to JobStatus) bool {
	return validTransitions[from][to]
}

func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Reference is a user supplied image passed to the provider as context.
// DataURL is always in data:<mime>;base64,<payload> form.
type Reference struct {
	Name    string `json:"name"`
	DataURL string `json:"data_url"`
}

type Job struct {
	ID         uuid.UUID   `json:"id"`
	Status     JobStatus   `json:"status"`
	Prompt     string      `json:"prompt"`
	Format     string      `json:"format"`
	Count      int         `json:"count"`
	References []Reference `json:"references,omitempty"`
	Images     []string    `json:"images"`
	Error      *string     `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// NewJob validates and normalizes submission input into a queued job.
// The prompt is trimmed, count is clamped and references are capped.
func NewJob(prompt, format string, count int, refs []Reference, now time.Time) (Job, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Job{}, &ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	if len([]rune(prompt)) < MinPromptLength {
		return Job{}, &ValidationError{Field: "prompt", Message: "prompt must be at least 10 characters"}
	}

	return Job{
		ID:         uuid.New(),
		Status:     StatusQueued,
		Prompt:     prompt,
		Format:     strings.TrimSpace(format),
		Count:      ClampCount(count),
		References: CapReferences(refs),
		Images:     []string{},
		CreatedAt:  now,
	}, nil
}

func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

func CapReferences(refs []Reference) []Reference {
	if len(refs) > MaxReferences {
		refs = refs[:MaxReferences]
	}
	out := make([]Reference, len(refs))
	copy(out, refs)
	return out
}

// Clone returns a deep copy so callers never share slices with the store.
func (j Job) Clone() Job {
	out := j
	out.References = append([]Reference(nil), j.References...)
	out.Images = append([]string{}, j.Images...)
	if j.Error != nil {
		msg := *j.Error
		out.Error = &msg
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
