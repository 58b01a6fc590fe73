// Package progress moves the mastery ledger in and out of the application as
// downloadable JSON documents.
package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vytor/quizflash/internal/ledger"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

const (
	// ContentType of exported documents.
	ContentType = "application/json"

	// DefaultMaxImportBytes bounds an imported document.
	DefaultMaxImportBytes = 1 << 20

	filenameLayout = "2006-01-02_15-04-05"
)

// Snapshotter is the part of the ledger that export and import use.
type Snapshotter interface {
	ExportSnapshot() ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) error
}

var _ Snapshotter = (*ledger.Ledger)(nil)

// Filename returns the suggested name for an export taken at now, e.g.
// quiz_progress_2024-03-01_12-30-05.json.
func Filename(now time.Time) string {
	return "quiz_progress_" + now.Format(filenameLayout) + ".json"
}

// Export renders the ledger as a document named after now.
func Export(l Snapshotter, now time.Time) (models.ProgressFile, error) {
	data, err := l.ExportSnapshot()
	if err != nil {
		return models.ProgressFile{}, fmt.Errorf("export progress: %w", err)
	}
	return models.ProgressFile{
		Name:        Filename(now),
		ContentType: ContentType,
		Data:        data,
	}, nil
}

// Import reads one document from r and replaces the ledger with it. A
// document larger than maxBytes, or one that does not parse, is rejected with
// ledger.ErrInvalidSnapshot and the ledger is left as it was.
func Import(ctx context.Context, l Snapshotter, r io.Reader, maxBytes int64) error {
	log := logger.FromContext(ctx).WithPrefix("progress")
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImportBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read progress document: %w", err)
	}
	if int64(len(data)) > maxBytes {
		log.Warn("rejected progress document larger than %d bytes", maxBytes)
		return fmt.Errorf("%w: document exceeds %d bytes", ledger.ErrInvalidSnapshot, maxBytes)
	}

	if err := l.ImportSnapshot(ctx, data); err != nil {
		log.Warn("progress import failed: %v", err)
		return err
	}
	log.Info("progress imported: %d bytes", len(data))
	return nil
}
