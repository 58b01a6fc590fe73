package repository

import (
	"context"

	"github.com/vytor/quizflash/internal/models"
)

// SlotRepository is a durable key-value store of named slots. Every write
// is committed before the call returns.
type SlotRepository interface {
	// Get returns the slot value; ok is false when the slot does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the slot value, archiving the previous one.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the slot, archiving its value. Deleting a missing slot is not an error.
	Delete(ctx context.Context, key string) error
	// History lists archived values of key, newest first.
	History(ctx context.Context, key string, limit int) ([]models.SlotVersion, error)
	// Version returns one archived value by id, or nil when it does not exist.
	Version(ctx context.Context, id int64) (*models.SlotVersion, error)
}
