package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id,account_id,resource,product,region,price,cost,status,created_at,pack_steps`

type OrderRepository struct {
	db *db.DB
}

func NewOrderRepository(dbObj *db.DB) *OrderRepository {
	return &OrderRepository{db: dbObj}
}

// Create debits the owner and inserts the PENDING order in one transaction.
func (repository *OrderRepository) Create(ctx context.Context, order models.Order) error {
	query := `INSERT INTO orders (id, account_id, resource, price, cost, status, created_at, product, region, pack_steps) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	steps := order.PackSteps
	if steps == nil {
		steps = []models.PackStep{}
	}
	packSteps, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	price := models.ToCents(order.Price)
	cost := models.ToCents(order.Cost)

	return retry.DoRetry(ctx, func() error {
		return inTx(ctx, repository.db, func(tx pgx.Tx) error {
			if err := debitTx(ctx, tx, order.AccountID, price); err != nil {
				return err
			}

			_, err := tx.Exec(ctx, query,
				order.ID,
				order.AccountID,
				order.ResourceID,
				price,
				cost,
				models.PendingStatus,
				order.CreatedAt,
				order.Product,
				order.Region,
				string(packSteps),
			)
			if err != nil {
				if pgErr, ok := uniqueViolation(err); ok {
					if pgErr.ConstraintName == "orders_pkey" {
						return customerror.NewUniqueViolationError(fmt.Sprintf("order with id %v already exists", order.ID))
					}
					return customerror.NewDuplicateResourceError(order.ResourceID, order.Product)
				}
				return err
			}
			return nil
		})
	})
}

func (repository *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return retry.DoRetryWithResult(ctx, func() (*models.Order, error) {
		row := repository.db.Pool.QueryRow(ctx, query, id)
		order, err := scanOrder(row)
		if err != nil {
			return nil, err
		}
		return order, nil
	})
}

func (repository *OrderRepository) GetListInFlight(ctx context.Context) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at`
	return retry.DoRetryWithResult(ctx, func() ([]models.Order, error) {
		rows, err := repository.db.Pool.Query(ctx, query, models.PendingStatus)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		orders := []models.Order{}
		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				return nil, err
			}
			orders = append(orders, *order)
		}

		err = rows.Err()
		if err != nil {
			return nil, err
		}
		return orders, nil
	})
}

// UpdateStatus moves a PENDING order to status. It reports false when the
// order was already terminal.
func (repository *OrderRepository) UpdateStatus(ctx context.Context, orderID string, newStatus models.OrderStatus) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`
	return retry.DoRetryWithResult(ctx, func() (bool, error) {
		row, err := repository.db.Pool.Exec(ctx, query, newStatus, orderID, models.PendingStatus)
		if err != nil {
			return false, err
		}
		return row.RowsAffected() == 1, nil
	})
}

// Refund marks a PENDING order REFUNDED and gives its price back. Only the
// call that wins the status change credits the account.
func (repository *OrderRepository) Refund(ctx context.Context, orderID string) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3 RETURNING account_id, price`
	return retry.DoRetryWithResult(ctx, func() (bool, error) {
		refunded := false
		err := inTx(ctx, repository.db, func(tx pgx.Tx) error {
			var accountID, price int64
			err := tx.QueryRow(ctx, query, models.RefundedStatus, orderID, models.PendingStatus).Scan(&accountID, &price)
			if err != nil {
				return err
			}
			if err = creditTx(ctx, tx, accountID, price); err != nil {
				return err
			}
			refunded = true
			return nil
		})
		if isNoRows(err) {
			return false, nil
		}
		return refunded, err
	})
}

// IsResourceUsed checks every historical order and the denylist.
func (repository *OrderRepository) IsResourceUsed(ctx context.Context, resourceID, product string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE resource = $1 AND product = $2) OR EXISTS (SELECT 1 FROM blocked_resources WHERE resource = $1 AND product = $2)`
	return retry.DoRetryWithResult(ctx, func() (bool, error) {
		var used bool
		err := repository.db.Pool.QueryRow(ctx, query, resourceID, product).Scan(&used)
		return used, err
	})
}

// GetSalesSince sums completed orders created after since.
func (repository *OrderRepository) GetSalesSince(ctx context.Context, since time.Time) (count int, sales, cost int64, err error) {
	query := `SELECT count(*), COALESCE(SUM(price), 0), COALESCE(SUM(cost), 0) FROM orders WHERE status = $1 AND created_at >= $2`
	err = retry.DoRetry(ctx, func() error {
		return repository.db.Pool.QueryRow(ctx, query, models.CompletedStatus, since).Scan(&count, &sales, &cost)
	})
	return count, sales, cost, err
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var price int64
	var cost *int64
	var packSteps []byte
	err := row.Scan(
		&order.ID,
		&order.AccountID,
		&order.ResourceID,
		&order.Product,
		&order.Region,
		&price,
		&cost,
		&order.Status,
		&order.CreatedAt,
		&packSteps,
	)
	if err != nil {
		return nil, err
	}

	var costCents int64
	if cost != nil {
		costCents = *cost
	}
	order.SetPriceInCents(price, costCents)

	if len(packSteps) > 0 {
		if err = json.Unmarshal(packSteps, &order.PackSteps); err != nil {
			return nil, fmt.Errorf("order %s has broken pack steps: %w", order.ID, err)
		}
	}
	if len(order.PackSteps) == 0 {
		order.PackSteps = nil
	}
	return &order, nil
}
