package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultHistoryLimit = 50

// HistoryEntry is a snapshot of a job taken when it reached done.
type HistoryEntry struct {
	JobID       uuid.UUID `json:"job_id"`
	Prompt      string    `json:"prompt"`
	Format      string    `json:"format"`
	Count       int       `json:"count"`
	Images      []string  `json:"images"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewHistoryEntry(j Job, at time.Time) HistoryEntry {
	return HistoryEntry{
		JobID:       j.ID,
		Prompt:      j.Prompt,
		Format:      j.Format,
		Count:       j.Count,
		Images:      append([]string{}, j.Images...),
		CompletedAt: at,
	}
}
