package repository

import (
	"context"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
)

type OperatorRepository struct {
	db *db.DB
}

func NewOperatorRepository(dbObj *db.DB) *OperatorRepository {
	return &OperatorRepository{db: dbObj}
}

// CreateIfAbsent keeps an existing row untouched, so a seed never overrides
// what operators changed later.
func (repository *OperatorRepository) CreateIfAbsent(ctx context.Context, operator models.Operator) (bool, error) {
	query := `INSERT INTO operators (account_id, name, password) VALUES ($1, $2, $3) ON CONFLICT (account_id) DO NOTHING`
	return retry.DoRetryWithResult(ctx, func() (bool, error) {
		row, err := repository.db.Pool.Exec(ctx, query, operator.AccountID, operator.Name, operator.PasswordHash)
		if err != nil {
			return false, err
		}
		return row.RowsAffected() == 1, nil
	})
}

func (repository *OperatorRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Operator, error) {
	query := `SELECT account_id, name, password FROM operators WHERE account_id = $1`
	return retry.DoRetryWithResult(ctx, func() (*models.Operator, error) {
		row := repository.db.Pool.QueryRow(ctx, query, accountID)

		elem := models.Operator{}
		err := row.Scan(&elem.AccountID, &elem.Name, &elem.PasswordHash)
		if err != nil {
			return nil, err
		}
		return &elem, nil
	})
}

func (repository *OperatorRepository) GetList(ctx context.Context) ([]models.Operator, error) {
	query := `SELECT account_id, name, password FROM operators ORDER BY account_id`
	return retry.DoRetryWithResult(ctx, func() ([]models.Operator, error) {
		rows, err := repository.db.Pool.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		operators := []models.Operator{}
		for rows.Next() {
			var elem models.Operator
			if err = rows.Scan(&elem.AccountID, &elem.Name, &elem.PasswordHash); err != nil {
				return nil, err
			}
			operators = append(operators, elem)
		}
		return operators, rows.Err()
	})
}
