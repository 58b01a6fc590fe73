package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
)

type startQuizRequest struct {
	Sources []string `json:"sources"`
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type nextRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.QuizService.Sources(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	remaining, err := s.QuizService.Remaining(r.Context(), r.URL.Query()["source"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remaining)
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req startQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("starting quiz: sources=%v", req.Sources)

	view, err := s.QuizService.Start(r.Context(), req.Sources)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleCurrentQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.Current(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.SessionID == "" {
		handleError(w, r, errors.NewValidationError("session_id", "required"))
		return
	}

	view, err := s.QuizService.Answer(r.Context(), req.SessionID, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.SessionID == "" {
		handleError(w, r, errors.NewValidationError("session_id", "required"))
		return
	}

	view, err := s.QuizService.Next(r.Context(), req.SessionID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.Restart(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleAbandonQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.QuizService.Abandon(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
