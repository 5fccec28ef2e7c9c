package httptransport

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"image-job-service/internal/entity"
	"image-job-service/internal/refimage"
	"image-job-service/internal/service"
)

type generateDTO struct {
	Prompt     string             `json:"prompt"`
	Format     string             `json:"format"`
	Count      *int               `json:"count,omitempty"`
	References []entity.Reference `json:"references,omitempty"`
	StoredRefs []entity.Reference `json:"stored_refs,omitempty"`
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func (h *Handler) decodeJSONSubmission(w http.ResponseWriter, r *http.Request) (service.SubmitRequest, error) {
	var dto generateDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUpload)).Decode(&dto); err != nil {
		return service.SubmitRequest{}, &entity.ValidationError{Field: "body", Message: "invalid json"}
	}

	count := 1
	if dto.Count != nil {
		count = *dto.Count
	}

	stored := refimage.Filter(dto.StoredRefs)
	listed := refimage.Filter(dto.References)
	if skipped := stored.Skipped + listed.Skipped; skipped > 0 {
		h.log.Warn().Int("skipped", skipped).Msg("skipped malformed references")
	}

	return service.SubmitRequest{
		Prompt:     dto.Prompt,
		Format:     dto.Format,
		Count:      count,
		References: mergeRefs(stored.Refs, listed.Refs),
	}, nil
}

// parseFormSubmission reads the urlencoded or multipart form used by the
// index page. references may arrive as file uploads, as a JSON list, or
// both; stored_refs is a JSON list kept client side between submissions.
func (h *Handler) parseFormSubmission(r *http.Request) (service.SubmitRequest, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(h.maxUpload)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return service.SubmitRequest{}, &entity.ValidationError{Field: "form", Message: "invalid form submission"}
	}

	count, err := strconv.Atoi(strings.TrimSpace(r.FormValue("count")))
	if err != nil {
		count = 1
	}

	stored := refimage.ParseList("stored_refs", r.FormValue("stored_refs"))
	if !stored.OK() {
		return service.SubmitRequest{}, stored.Err
	}
	listed := refimage.ParseList("references", r.FormValue("references"))
	if !listed.OK() {
		return service.SubmitRequest{}, listed.Err
	}
	skipped := stored.Skipped + listed.Skipped

	refs := mergeRefs(stored.Refs, listed.Refs)
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["references"] {
			if len(refs) >= entity.MaxReferences {
				break
			}
			ref, err := refimage.FromUpload(fh)
			if err != nil {
				skipped++
				h.log.Warn().Err(err).Msg("skipped reference upload")
				continue
			}
			refs = append(refs, ref)
		}
	}
	if skipped > 0 {
		h.log.Warn().Int("skipped", skipped).Msg("skipped malformed references")
	}

	return service.SubmitRequest{
		Prompt:     r.FormValue("prompt"),
		Format:     r.FormValue("format"),
		Count:      count,
		References: refs,
	}, nil
}

func mergeRefs(lists ...[]entity.Reference) []entity.Reference {
	out := []entity.Reference{}
	for _, l := range lists {
		out = append(out, l...)
	}
	return entity.CapReferences(out)
}
