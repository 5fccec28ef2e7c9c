package store

import "image-job-service/internal/entity"

// History is a keep-last-N log of completed jobs. It is not synchronized on
// its own; Store guards it with the same mutex as the job table.
type History struct {
	limit   int
	entries []entity.HistoryEntry
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = entity.DefaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Append(e entity.HistoryEntry) {
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.limit; over > 0 {
		// copy into a fresh slice so the evicted prefix can be collected
		kept := make([]entity.HistoryEntry, h.limit)
		copy(kept, h.entries[over:])
		h.entries = kept
	}
}

func (h *History) Entries() []entity.HistoryEntry {
	out := make([]entity.HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		e.Images = append([]string{}, e.Images...)
		out[i] = e
	}
	return out
}

func (h *History) Len() int { return len(h.entries) }
