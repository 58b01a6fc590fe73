package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

// DefaultHistoryLimit is how many archived values are kept per slot.
const DefaultHistoryLimit = 20

type slotRepository struct {
	db           *sql.DB
	historyLimit int
}

// NewSlotRepository creates a new SlotRepository implementation
func NewSlotRepository(db *sql.DB) repository.SlotRepository {
	return &slotRepository{db: db, historyLimit: DefaultHistoryLimit}
}

func (r *slotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("reading slot: key=%s", key)

	query, args, err := sqlBuilder.Select("value").From("slots").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, false, err
	}

	var value []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("slot not found: key=%s", key)
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to read slot: %v", err)
		return nil, false, err
	}
	return value, true, nil
}

func (r *slotRepository) Put(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("writing slot: key=%s, bytes=%d", key, len(value))

	if value == nil {
		value = []byte{}
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.archive(ctx, tx, key); err != nil {
			return err
		}
		upsert := sqlBuilder.Insert("slots").
			Columns("key", "value", "updated_at").
			Values(key, value, squirrel.Expr("CURRENT_TIMESTAMP")).
			Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")
		if err := exec(ctx, tx, upsert); err != nil {
			log.Error("failed to write slot: %v", err)
			return err
		}
		return nil
	})
}

func (r *slotRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("deleting slot: key=%s", key)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.archive(ctx, tx, key); err != nil {
			return err
		}
		if err := exec(ctx, tx, sqlBuilder.Delete("slots").Where(squirrel.Eq{"key": key})); err != nil {
			log.Error("failed to delete slot: %v", err)
			return err
		}
		return nil
	})
}

// archive copies the current value of key into slot_history and prunes the
// history down to the configured limit.
func (r *slotRepository) archive(ctx context.Context, tx *sql.Tx, key string) error {
	current := sqlBuilder.Select("key", "value").From("slots").Where(squirrel.Eq{"key": key})
	if err := exec(ctx, tx, sqlBuilder.Insert("slot_history").Columns("key", "value").Select(current)); err != nil {
		return err
	}
	prune := sqlBuilder.Delete("slot_history").
		Where(squirrel.Eq{"key": key}).
		Where("id NOT IN (SELECT id FROM slot_history WHERE key = ? ORDER BY id DESC LIMIT ?)", key, r.historyLimit)
	return exec(ctx, tx, prune)
}

func (r *slotRepository) History(ctx context.Context, key string, limit int) ([]models.SlotVersion, error) {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("listing slot history: key=%s, limit=%d", key, limit)

	q := sqlBuilder.Select(versionColumns...).
		From("slot_history").
		Where(squirrel.Eq{"key": key}).
		OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query slot history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var versions []models.SlotVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			log.Error("failed to scan slot history row: %v", err)
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *slotRepository) Version(ctx context.Context, id int64) (*models.SlotVersion, error) {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")

	query, args, err := sqlBuilder.Select(versionColumns...).
		From("slot_history").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	v, err := scanVersion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("slot version not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get slot version: %v", err)
		return nil, err
	}
	return &v, nil
}
