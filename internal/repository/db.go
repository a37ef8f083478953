package repository

import (
	"context"
	"errors"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// inTx runs fn in a transaction that is rolled back when fn or the commit fails.
func inTx(ctx context.Context, database *db.DB, fn func(tx pgx.Tx) error) (err error) {
	tx, err := database.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func uniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr, true
	}
	return nil, false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
