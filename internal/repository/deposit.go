package repository

import (
	"context"
	"fmt"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
	"github.com/jackc/pgx/v5"
)

type DepositRepository struct {
	db *db.DB
}

func NewDepositRepository(dbObj *db.DB) *DepositRepository {
	return &DepositRepository{db: dbObj}
}

// Create stores the deposit and credits the account in one transaction.
// A deposit whose reference was already recorded is rejected with
// UniqueViolationError and credits nothing.
func (repository *DepositRepository) Create(ctx context.Context, deposit models.Deposit) error {
	query := `INSERT INTO deposits (id, account_id, amount, source, reference, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	amount := models.ToCents(deposit.Amount)

	return retry.DoRetry(ctx, func() error {
		return inTx(ctx, repository.db, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, query,
				deposit.ID,
				deposit.AccountID,
				amount,
				deposit.Source,
				deposit.Reference,
				deposit.CreatedAt,
			)
			if err != nil {
				if _, ok := uniqueViolation(err); ok {
					errWithMessage := fmt.Sprintf("deposit with reference %v already exists", deposit.Reference)
					return customerror.NewUniqueViolationError(errWithMessage)
				}
				return customerror.NewCommonPGError(err.Error())
			}
			return creditTx(ctx, tx, deposit.AccountID, amount)
		})
	})
}

func (repository *DepositRepository) GetListByAccountID(ctx context.Context, accountID int64) ([]models.Deposit, error) {
	query := `SELECT id,account_id,amount,source,reference,created_at FROM deposits WHERE account_id = $1 ORDER BY created_at`
	return retry.DoRetryWithResult(ctx, func() ([]models.Deposit, error) {
		rows, err := repository.db.Pool.Query(ctx, query, accountID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		deposits := []models.Deposit{}
		for rows.Next() {
			var deposit models.Deposit
			var amount int64
			var reference *string
			err = rows.Scan(&deposit.ID, &deposit.AccountID, &amount, &deposit.Source, &reference, &deposit.CreatedAt)
			if err != nil {
				return nil, err
			}
			deposit.Amount = models.FromCents(amount)
			if reference != nil {
				deposit.Reference = *reference
			}
			deposits = append(deposits, deposit)
		}

		err = rows.Err()
		if err != nil {
			return nil, err
		}
		return deposits, nil
	})
}
