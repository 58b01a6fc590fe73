package api

import (
	"context"
	"time"

	"github.com/vytor/quizflash/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	QuizService     services.QuizService
	ProgressService services.ProgressService
	DB              Pinger

	// MaxImportBytes bounds the request body of a progress import.
	MaxImportBytes int64
	RequestTimeout time.Duration
}
