package api

import (
	stderrors "errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/progress"
)

// multipartOverhead is allowed on top of MaxImportBytes for form framing.
const multipartOverhead = 64 << 10

func (s *Server) handleProgressCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ProgressService.Counts(r.Context()))
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.ProgressService.Reset(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ProgressService.Counts(r.Context()))
}

func (s *Server) handleExportProgress(w http.ResponseWriter, r *http.Request) {
	file, err := s.ProgressService.Export(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// handleImportProgress accepts the document either as the "file" field of a
// multipart form or as the raw request body.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	limit := s.MaxImportBytes
	if limit <= 0 {
		limit = progress.DefaultMaxImportBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
			log.Warn("failed to parse import form: %v", err)
			handleError(w, r, uploadError(err))
			return
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			handleError(w, r, errors.NewValidationError("file", "required"))
			return
		}
		defer f.Close()
		log.Debug("importing progress from upload %s (%d bytes)", header.Filename, header.Size)
		body = f
	}

	if err := s.ProgressService.Import(r.Context(), body); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ProgressService.Counts(r.Context()))
}

func (s *Server) handleProgressHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, r, errors.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	versions, err := s.ProgressService.History(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (s *Server) handleRestoreProgress(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleError(w, r, errors.NewValidationError("id", "must be an integer"))
		return
	}

	if err := s.ProgressService.Restore(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ProgressService.Counts(r.Context()))
}

// uploadError maps a form parsing failure. An oversized upload is reported
// like an oversized raw body, as an invalid progress file.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) || stderrors.Is(err, multipart.ErrMessageTooLarge) {
		return errors.NewInvalidSnapshotError(err)
	}
	return errors.NewBadRequestError("invalid upload")
}
