package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	db *db.DB
}

func NewAccountRepository(dbObj *db.DB) *AccountRepository {
	return &AccountRepository{db: dbObj}
}

func (repository *AccountRepository) GetByID(ctx context.Context, accountID int64) (models.Account, error) {
	query := `SELECT balance FROM accounts WHERE id = $1`
	return retry.DoRetryWithResult(ctx, func() (models.Account, error) {
		account := models.NewAccount(accountID)

		var balance int64
		err := repository.db.Pool.QueryRow(ctx, query, accountID).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Unknown accounts have a zero balance until their first credit.
				return account, nil
			}
			return account, err
		}

		account.SetBalance(balance)
		return account, nil
	})
}

func (repository *AccountRepository) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return retry.DoRetry(ctx, func() error {
		return inTx(ctx, repository.db, func(tx pgx.Tx) error {
			return creditTx(ctx, tx, accountID, models.ToCents(amount))
		})
	})
}

func (repository *AccountRepository) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return retry.DoRetry(ctx, func() error {
		return inTx(ctx, repository.db, func(tx pgx.Tx) error {
			return debitTx(ctx, tx, accountID, models.ToCents(amount))
		})
	})
}

func creditTx(ctx context.Context, tx pgx.Tx, accountID int64, cents int64) error {
	query := `INSERT INTO accounts (id, balance) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`

	row, err := tx.Exec(ctx, query, accountID, cents)
	if err != nil {
		return err
	}
	if row.RowsAffected() == 0 {
		return fmt.Errorf("account %d was not credited", accountID)
	}
	return nil
}

// debitTx never lets the balance go below zero.
func debitTx(ctx context.Context, tx pgx.Tx, accountID int64, cents int64) error {
	ensure := `INSERT INTO accounts (id, balance) VALUES ($1, 0) ON CONFLICT (id) DO NOTHING`
	debit := `UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1`

	if _, err := tx.Exec(ctx, ensure, accountID); err != nil {
		return err
	}
	row, err := tx.Exec(ctx, debit, cents, accountID)
	if err != nil {
		return err
	}
	if row.RowsAffected() == 0 {
		var balance int64
		if err = tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance); err != nil {
			return err
		}
		return customerror.NewBalanceError(models.FromCents(cents), models.FromCents(balance))
	}
	return nil
}
