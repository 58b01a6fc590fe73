// Package ledger keeps the per-question mastery record. Every mutation is
// written through to the slot repository before it returns.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

// DefaultKey is the slot the ledger is persisted under.
const DefaultKey = "quiz_progress"

// ErrUnavailable is returned by mutations while the stored ledger could not
// be read. Writing then would replace progress that was never loaded.
var ErrUnavailable = errors.New("ledger: stored progress could not be read")

// Ledger maps question ids to their last outcome: true for correct, false
// for incorrect, absent for never attempted. It is not safe for concurrent
// use; callers serialize access.
type Ledger struct {
	repo    repository.SlotRepository
	key     string
	entries map[string]bool
	// readErr is the last Load failure; nil once a Load has succeeded.
	readErr error
}

// New returns an empty ledger persisted under key. Call Load to read the
// stored state.
func New(repo repository.SlotRepository, key string) *Ledger {
	if key == "" {
		key = DefaultKey
	}
	return &Ledger{repo: repo, key: key, entries: map[string]bool{}}
}

// Key returns the slot name.
func (l *Ledger) Key() string { return l.key }

// Load replaces the in-memory state with the persisted one. It never fails
// outward. A corrupt record is deleted and the ledger starts empty. An
// unreadable store also leaves the ledger empty, but marks it unavailable:
// mutations retry the read and return ErrUnavailable while it keeps failing.
func (l *Ledger) Load(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("ledger").WithField("key", l.key)

	l.entries = map[string]bool{}

	data, ok, err := l.repo.Get(ctx, l.key)
	if err != nil {
		l.readErr = err
		log.Error("failed to read ledger, refusing writes until it can be read: %v", err)
		return
	}
	l.readErr = nil
	if !ok {
		log.Debug("no stored ledger")
		return
	}

	entries, err := DecodeSnapshot(data)
	if err != nil {
		log.Warn("stored ledger is corrupt, clearing it: %v", err)
		if derr := l.repo.Delete(ctx, l.key); derr != nil {
			log.Error("failed to clear corrupt ledger: %v", derr)
		}
		return
	}

	l.entries = entries
	log.Info("ledger loaded: %d entries", len(entries))
}

// Available reports whether the stored ledger has been read. While it is
// false the ledger is empty and every mutation fails.
func (l *Ledger) Available() bool { return l.readErr == nil }

// ensureLoaded retries a failed Load before a mutation.
func (l *Ledger) ensureLoaded(ctx context.Context) error {
	if l.readErr == nil {
		return nil
	}
	l.Load(ctx)
	if l.readErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, l.readErr)
	}
	return nil
}

// IsMastered reports whether id was answered correctly last time.
func (l *Ledger) IsMastered(id string) bool {
	return l.entries[id]
}

// Outcome returns the tri-state outcome for id.
func (l *Ledger) Outcome(id string) models.Outcome {
	correct, ok := l.entries[id]
	switch {
	case !ok:
		return models.Unattempted
	case correct:
		return models.Correct
	default:
		return models.Incorrect
	}
}

// Record stores the outcome for id, overwriting any previous one, and
// persists the ledger. When the write fails the ledger is left as it was.
func (l *Ledger) Record(ctx context.Context, id string, correct bool) error {
	if id == "" {
		return errors.New("ledger: empty question id")
	}
	if err := l.ensureLoaded(ctx); err != nil {
		return err
	}

	prev, had := l.entries[id]
	l.entries[id] = correct
	if err := l.persist(ctx); err != nil {
		if had {
			l.entries[id] = prev
		} else {
			delete(l.entries, id)
		}
		return err
	}
	return nil
}

// Reset clears every record and persists the empty ledger.
func (l *Ledger) Reset(ctx context.Context) error {
	if err := l.ensureLoaded(ctx); err != nil {
		return err
	}
	prev := l.entries
	l.entries = map[string]bool{}
	if err := l.persist(ctx); err != nil {
		l.entries = prev
		return err
	}
	logger.FromContext(ctx).WithPrefix("ledger").Info("ledger reset: %d entries cleared", len(prev))
	return nil
}

// ExportSnapshot serializes the whole ledger as indented JSON. It fails
// while the stored ledger is unreadable, since the export would be empty.
func (l *Ledger) ExportSnapshot() ([]byte, error) {
	if l.readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, l.readErr)
	}
	return EncodeSnapshot(l.entries)
}

// ImportSnapshot replaces the ledger with the decoded contents of data and
// persists it. On any failure the current ledger is untouched.
func (l *Ledger) ImportSnapshot(ctx context.Context, data []byte) error {
	entries, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	if err := l.ensureLoaded(ctx); err != nil {
		return err
	}

	encoded, err := EncodeSnapshot(entries)
	if err != nil {
		return err
	}
	if err := l.repo.Put(ctx, l.key, encoded); err != nil {
		logger.FromContext(ctx).WithPrefix("ledger").Error("failed to persist imported ledger: %v", err)
		return err
	}

	l.entries = entries
	logger.FromContext(ctx).WithPrefix("ledger").Info("ledger imported: %d entries", len(entries))
	return nil
}

// Len returns the number of recorded questions.
func (l *Ledger) Len() int { return len(l.entries) }

// Counts returns how many recorded questions are mastered and missed.
func (l *Ledger) Counts() models.LedgerCounts {
	var c models.LedgerCounts
	for _, correct := range l.entries {
		if correct {
			c.Mastered++
		} else {
			c.Missed++
		}
	}
	return c
}

func (l *Ledger) persist(ctx context.Context) error {
	data, err := EncodeSnapshot(l.entries)
	if err != nil {
		return err
	}
	if err := l.repo.Put(ctx, l.key, data); err != nil {
		logger.FromContext(ctx).WithPrefix("ledger").Error("failed to persist ledger: %v", err)
		return err
	}
	return nil
}
