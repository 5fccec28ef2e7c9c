package refimage

import (
	"encoding/json"
	"fmt"
	"strings"

	"image-job-service/internal/entity"
)

// ListResult is the outcome of parsing a JSON reference list.
//
//   - blank input: empty Refs, nil Err
//   - JSON that is not a list of objects: Err is a *entity.ValidationError
//   - entries without a valid image data URL: dropped and counted in Skipped
type ListResult struct {
	Refs    []entity.Reference
	Skipped int
	Err     error
}

func (r ListResult) OK() bool { return r.Err == nil }

// ParseList decodes a JSON array of {name, data_url} descriptors, as sent in
// the references and stored_refs form fields.
func ParseList(field, raw string) ListResult {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return ListResult{Refs: []entity.Reference{}}
	}

	var items []entity.Reference
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return ListResult{Err: &entity.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a JSON list of {name, data_url}", field),
		}}
	}

	return Filter(items)
}

// Filter keeps references whose data URL parses, naming unnamed ones.
func Filter(items []entity.Reference) ListResult {
	res := ListResult{Refs: make([]entity.Reference, 0, len(items))}
	for _, it := range items {
		if _, _, err := ParseDataURL(it.DataURL); err != nil {
			res.Skipped++
			continue
		}
		name := strings.TrimSpace(it.Name)
		if name == "" {
			name = fmt.Sprintf("reference-%d", len(res.Refs)+1)
		}
		res.Refs = append(res.Refs, entity.Reference{Name: name, DataURL: strings.TrimSpace(it.DataURL)})
	}
	return res
}
