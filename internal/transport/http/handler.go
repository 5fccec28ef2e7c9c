package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"image-job-service/internal/entity"
	"image-job-service/internal/service"
)

type Options struct {
	MaxUploadBytes  int64
	RateLimitPerMin int
}

type Handler struct {
	jobSvc     *service.JobService
	log        zerolog.Logger
	maxUpload  int64
	ratePerMin int
}

func NewHandler(jobSvc *service.JobService, log zerolog.Logger, opts Options) *Handler {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Handler{
		jobSvc:     jobSvc,
		log:        log,
		maxUpload:  maxUpload,
		ratePerMin: opts.RateLimitPerMin,
	}
}

type createJobResp struct {
	JobID  string           `json:"job_id"`
	Status entity.JobStatus `json:"status"`
}

type statusResp struct {
	JobID      string           `json:"job_id"`
	Status     entity.JobStatus `json:"status"`
	Images     []string         `json:"images"`
	Error      *string          `json:"error"`
	Prompt     string           `json:"prompt"`
	Format     string           `json:"format"`
	Count      int              `json:"count"`
	CreatedAt  string           `json:"created_at"`
	StartedAt  *string          `json:"started_at,omitempty"`
	FinishedAt *string          `json:"finished_at,omitempty"`
}

type unknownResp struct {
	Status entity.JobStatus `json:"status"`
	Images []string         `json:"images"`
}

type historyResp struct {
	History []entity.HistoryEntry `json:"history"`
}

// Generate godoc
// @Summary Submit an image generation job
// @Description Validates the request, stores a queued job and hands it to the worker pool. Accepts JSON or a (multipart) form.
// @Tags jobs
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body generateDTO true "prompt (>= 10 chars), format, count (clamped to 1..4), references (max 10)"
// @Success 202 {object} createJobResp
// @Failure 400 {object} errorBody
// @Failure 429 {object} errorBody
// @Failure 503 {object} errorBody
// @Router /api/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseSubmission(w, r)
	if err == nil {
		var id uuid.UUID
		if id, err = h.jobSvc.Submit(r.Context(), req); err == nil {
			writeJSON(w, http.StatusAccepted, createJobResp{JobID: id.String(), Status: entity.StatusQueued})
			return
		}
	}

	code, msg := submitFailure(err)
	if code == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("submit job")
	}
	writeErr(w, code, msg)
}

func (h *Handler) parseSubmission(w http.ResponseWriter, r *http.Request) (service.SubmitRequest, error) {
	if isJSON(r) {
		return h.decodeJSONSubmission(w, r)
	}
	return h.parseFormSubmission(r)
}

// Status godoc
// @Summary Poll a job
// @Description Returns the current snapshot. Unknown ids answer {"status":"unknown","images":[]}.
// @Tags jobs
// @Produce json
// @Param job_id path string true "job id (uuid)"
// @Success 200 {object} statusResp
// @Router /status/{job_id} [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	v := h.jobSvc.Status(r.Context(), chi.URLParam(r, "job_id"))
	if !v.Known {
		writeJSON(w, http.StatusOK, unknownResp{Status: entity.StatusUnknown, Images: []string{}})
		return
	}

	resp := statusResp{
		JobID:      v.ID,
		Status:     v.Status,
		Images:     v.Images,
		Error:      v.Error,
		Prompt:     v.Prompt,
		Format:     v.Format,
		Count:      v.Count,
		CreatedAt:  v.CreatedAt.Format(time.RFC3339),
		StartedAt:  formatTime(v.StartedAt),
		FinishedAt: formatTime(v.FinishedAt),
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// History godoc
// @Summary Recently completed jobs
// @Description Oldest first, bounded to the configured history size.
// @Tags jobs
// @Produce json
// @Success 200 {object} historyResp
// @Router /history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResp{History: h.jobSvc.History(r.Context())})
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
