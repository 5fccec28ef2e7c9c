package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"image-job-service/internal/entity"
)

// errorBody is the JSON shape of every non-2xx API answer.
type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	// job snapshots change between polls
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Message: msg})
}

// submitFailure maps a parse or Submit error to a status code and the
// message shown to the client. Unexpected errors are not echoed.
func submitFailure(err error) (int, string) {
	switch {
	case entity.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, entity.ErrQueueFull):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
