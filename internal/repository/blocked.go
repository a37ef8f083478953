package repository

import (
	"context"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
)

type BlockedRepository struct {
	db *db.DB
}

func NewBlockedRepository(dbObj *db.DB) *BlockedRepository {
	return &BlockedRepository{db: dbObj}
}

// Block adds the pair to the permanent denylist. Blocking twice is a no-op.
func (repository *BlockedRepository) Block(ctx context.Context, resourceID, product string) error {
	query := `INSERT INTO blocked_resources (resource, product, reported_at) VALUES ($1, $2, now()) ON CONFLICT (resource, product) DO NOTHING`
	return retry.DoRetry(ctx, func() error {
		_, err := repository.db.Pool.Exec(ctx, query, resourceID, product)
		return err
	})
}

func (repository *BlockedRepository) GetList(ctx context.Context) ([]models.BlockedResource, error) {
	query := `SELECT resource, product, reported_at FROM blocked_resources ORDER BY reported_at`
	return retry.DoRetryWithResult(ctx, func() ([]models.BlockedResource, error) {
		rows, err := repository.db.Pool.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		blocked := []models.BlockedResource{}
		for rows.Next() {
			var item models.BlockedResource
			if err = rows.Scan(&item.ResourceID, &item.Product, &item.ReportedAt); err != nil {
				return nil, err
			}
			blocked = append(blocked, item)
		}
		return blocked, rows.Err()
	})
}
