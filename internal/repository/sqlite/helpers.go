package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// tx runs fn inside a transaction, rolling back when fn fails. A slot write
// is durable only once Commit returns.
func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	t, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin slot transaction: %v", err)
		return err
	}
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			log.Warn("rollback failed: %v", rbErr)
		}
		log.Debug("slot transaction rolled back: %v", err)
		return err
	}
	if err := t.Commit(); err != nil {
		log.Error("failed to commit slot transaction: %v", err)
		return err
	}
	return nil
}

// exec builds stmt and runs it inside t.
func exec(ctx context.Context, t *sql.Tx, stmt squirrel.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return err
	}
	_, err = t.ExecContext(ctx, query, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// versionColumns matches the order scanVersion reads.
var versionColumns = []string{"id", "key", "value", "replaced_at"}

func scanVersion(row rowScanner) (models.SlotVersion, error) {
	var v models.SlotVersion
	if err := row.Scan(&v.ID, &v.Key, &v.Value, &v.ReplacedAt); err != nil {
		return v, err
	}
	v.Size = len(v.Value)
	return v, nil
}
