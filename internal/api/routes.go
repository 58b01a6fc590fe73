package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(timeout))

		r.Get("/sources", s.handleSources)
		r.Get("/remaining", s.handleRemaining)

		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", s.handleCurrentQuiz)
			r.Post("/", s.handleStartQuiz)
			r.Delete("/", s.handleAbandonQuiz)
			r.Post("/answer", s.handleAnswer)
			r.Post("/next", s.handleNext)
			r.Post("/restart", s.handleRestart)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", s.handleProgressCounts)
			r.Post("/reset", s.handleResetProgress)
			r.Get("/export", s.handleExportProgress)
			r.Post("/import", s.handleImportProgress)
			r.Get("/history", s.handleProgressHistory)
			r.Post("/history/{id}/restore", s.handleRestoreProgress)
		})
	})

	return r
}
