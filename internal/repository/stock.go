package repository

import (
	"context"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
)

type StockRepository struct {
	db *db.DB
}

func NewStockRepository(dbObj *db.DB) *StockRepository {
	return &StockRepository{db: dbObj}
}

// Add reports false when the phone is already in stock.
func (repository *StockRepository) Add(ctx context.Context, account models.StockAccount) (bool, error) {
	query := `INSERT INTO stock_accounts (phone, session_string, password_2fa, cost, origin, added_at, status) VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (phone) DO NOTHING`
	return retry.DoRetryWithResult(ctx, func() (bool, error) {
		row, err := repository.db.Pool.Exec(ctx, query,
			account.Phone,
			account.SessionString,
			account.Password2FA,
			models.ToCents(account.Cost),
			account.Origin,
			account.AddedAt,
			account.Status,
		)
		if err != nil {
			return false, err
		}
		return row.RowsAffected() == 1, nil
	})
}

func (repository *StockRepository) CountAvailable(ctx context.Context) (int, error) {
	query := `SELECT count(*) FROM stock_accounts WHERE status = $1`
	return retry.DoRetryWithResult(ctx, func() (int, error) {
		var count int
		err := repository.db.Pool.QueryRow(ctx, query, models.StockAvailable).Scan(&count)
		return count, err
	})
}
