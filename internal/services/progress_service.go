package services

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/ledger"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/progress"
	"github.com/vytor/quizflash/internal/repository"
)

// ProgressService manages the mastery ledger outside of a quiz session.
type ProgressService interface {
	Counts(ctx context.Context) models.LedgerCounts
	Reset(ctx context.Context) error
	Export(ctx context.Context) (*models.ProgressFile, error)
	Import(ctx context.Context, r io.Reader) error
	History(ctx context.Context, limit int) ([]models.SlotVersion, error)
	Restore(ctx context.Context, versionID int64) error
}

type progressService struct {
	mu             sync.Locker
	ledger         *ledger.Ledger
	slots          repository.SlotRepository
	maxImportBytes int64
	now            func() time.Time
}

// NewProgressService creates a new ProgressService. mu must be the lock
// shared with the QuizService.
func NewProgressService(mu sync.Locker, l *ledger.Ledger, slots repository.SlotRepository, maxImportBytes int64) ProgressService {
	return &progressService{
		mu:             mu,
		ledger:         l,
		slots:          slots,
		maxImportBytes: maxImportBytes,
		now:            time.Now,
	}
}

func (s *progressService) Counts(ctx context.Context) models.LedgerCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Counts()
}

func (s *progressService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("progress_service")
	if err := s.ledger.Reset(ctx); err != nil {
		log.Error("failed to reset progress: %v", err)
		return mapProgressError(err)
	}
	return nil
}

func (s *progressService) Export(ctx context.Context) (*models.ProgressFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := progress.Export(s.ledger, s.now())
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_service").Error("failed to export progress: %v", err)
		return nil, mapProgressError(err)
	}
	return &file, nil
}

func (s *progressService) Import(ctx context.Context, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := progress.Import(ctx, s.ledger, r, s.maxImportBytes); err != nil {
		return mapProgressError(err)
	}
	return nil
}

func (s *progressService) History(ctx context.Context, limit int) ([]models.SlotVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.slots.History(ctx, s.ledger.Key(), limit)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_service").Error("failed to list progress history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if versions == nil {
		versions = []models.SlotVersion{}
	}
	return versions, nil
}

// Restore replaces the ledger with an archived version of it. The version
// being replaced is archived in turn, so a restore can itself be undone.
func (s *progressService) Restore(ctx context.Context, versionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("progress_service")
	version, err := s.slots.Version(ctx, versionID)
	if err != nil {
		log.Error("failed to load progress version: %v", err)
		return errors.NewInternalError(err)
	}
	if version == nil || version.Key != s.ledger.Key() {
		return errors.NewNotFoundError("progress version", versionID)
	}

	if err := s.ledger.ImportSnapshot(ctx, version.Value); err != nil {
		return mapProgressError(err)
	}
	log.Info("progress restored from version %d", versionID)
	return nil
}

func mapProgressError(err error) error {
	switch {
	case stderrors.Is(err, ledger.ErrInvalidSnapshot):
		return errors.NewInvalidSnapshotError(err)
	case stderrors.Is(err, ledger.ErrUnavailable):
		return errors.NewLedgerUnavailableError(err)
	default:
		return errors.NewInternalError(err)
	}
}
