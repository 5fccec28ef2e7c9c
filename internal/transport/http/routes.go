package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.log))

	// only submissions are rate limited; polling must stay cheap
	submit := func(next http.Handler) http.Handler { return next }
	if h.ratePerMin > 0 {
		submit = RateLimit(h.ratePerMin)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", h.Index)
	r.With(submit).Post("/", h.Index)
	r.With(submit).Post("/api/generate", h.Generate)
	r.Get("/status/{job_id}", h.Status)
	r.Get("/history", h.History)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
