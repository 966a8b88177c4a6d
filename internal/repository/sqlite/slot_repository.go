package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashcardhelper/internal/logger"
	"github.com/vytor/flashcardhelper/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type slotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new SlotRepository implementation
func NewSlotRepository(db *sql.DB) repository.SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("reading slot: key=%s", key)

	query, args, err := sqlBuilder.Select("value").From("slots").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("slot not found: key=%s", key)
		return "", false, nil
	}
	if err != nil {
		log.Error("failed to read slot %s: %v", key, err)
		return "", false, err
	}
	return value, true, nil
}

func (r *slotRepository) Put(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("writing slot: key=%s, bytes=%d", key, len(value))

	query, args, err := sqlBuilder.Insert("slots").
		Columns("key", "value", "updated_at").
		Values(key, value, squirrel.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to write slot %s: %v", key, err)
		return err
	}
	return nil
}

func (r *slotRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("slot_repo")
	log.Debug("deleting slot: key=%s", key)

	query, args, err := sqlBuilder.Delete("slots").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete slot %s: %v", key, err)
		return err
	}
	return nil
}
