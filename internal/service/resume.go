package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resume starts a fresh polling task for every PENDING order. Orders whose
// requester cannot be resolved stay PENDING for manual handling. It returns
// the number of tasks started.
func (c *Coordinator) Resume(ctx context.Context) (int, error) {
	orders, err := c.ledger.ListInFlightOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list in-flight orders: %w", err)
	}

	var started atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	if c.config.ResumeConcurrency > 0 {
		group.SetLimit(c.config.ResumeConcurrency)
	}

	for _, order := range orders {
		group.Go(func() error {
			if _, err := c.frontend.Resolve(groupCtx, order.AccountID); err != nil {
				logger.Log.Warn("requester not resolved, order left pending",
					zap.String("order_id", order.ID),
					zap.Int64("account_id", order.AccountID),
					zap.Error(err),
				)
				return nil
			}

			if _, ok := c.launch(order); !ok {
				return nil
			}
			started.Add(1)

			c.notify(groupCtx, order.AccountID, frontend.Message{
				Kind:    frontend.NotificationInfo,
				OrderID: order.ID,
				Text:    fmt.Sprintf("Still waiting for the code of %s.", order.ResourceID),
				Actions: AllowedActions(WaitingState),
			})
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return int(started.Load()), err
	}

	logger.Log.Info("in-flight orders resumed", zap.Int("pending", len(orders)), zap.Int64("started", started.Load()))
	return int(started.Load()), nil
}
