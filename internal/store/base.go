package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/entativa/eid/internal/errs"
)

// Base wraps *sqlx.DB the way the teacher's shared/repository.BaseRepository
// does, generalized with a Tx helper and an optimistic-concurrency update
// that every per-entity repository below builds on.
type Base struct {
	DB *sqlx.DB
}

// NewBase constructs a Base repository over an already-connected *sqlx.DB.
func NewBase(db *sqlx.DB) *Base {
	return &Base{DB: db}
}

// Transaction runs fn inside a transaction, rolling back on panic or error
// and committing otherwise. Mirrors the teacher's
// shared/repository.BaseRepository.Transaction.
func (b *Base) Transaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := b.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Newf(errs.TransientError, "begin transaction: %v", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errs.Newf(errs.Internal, "rollback failed: %v (original: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Newf(errs.TransientError, "commit transaction: %v", err)
	}
	return nil
}

// UpdateVersioned runs an UPDATE statement scoped to id and the expected
// version, returning errs.Conflict when zero rows matched (spec §5's
// optimistic concurrency rule: "UPDATE ... WHERE id = ? AND version = ?";
// zero rows affected means a concurrent writer won the race).
func UpdateVersioned(ctx context.Context, db sqlx.ExtContext, query string, args map[string]any) error {
	result, err := sqlx.NamedExecContext(ctx, db, query, args)
	if err != nil {
		return errs.Newf(errs.TransientError, "update: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errs.Newf(errs.Internal, "rows affected: %v", err)
	}
	if rows == 0 {
		return errs.New(errs.Conflict, "row changed concurrently, retry with fresh version")
	}
	return nil
}

// NotFoundOrErr translates sql.ErrNoRows into errs.NotFound and wraps
// anything else as a transient infrastructure error, matching the teacher's
// GetByID error handling.
func NotFoundOrErr(entity string, err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return errs.Newf(errs.NotFound, "%s not found", entity)
	}
	return errs.Newf(errs.TransientError, "%s: %v", entity, err)
}

func wrapExec(err error, op string) error {
	if err == nil {
		return nil
	}
	return errs.Newf(errs.TransientError, "%s: %v", op, err)
}

// pqUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
