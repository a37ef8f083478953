package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/clients/supplier"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/retry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Quote prices one product in one region for the requester.
func (c *Coordinator) Quote(ctx context.Context, product, region string) (decimal.Decimal, decimal.Decimal, error) {
	productEntry, regionEntry, err := c.catalog.Resolve(product, region)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	cost, err := c.supplier.Quote(ctx, productEntry.Code, regionEntry.Code)
	if err != nil {
		logger.Log.Info("no supplier price", zap.String("product", product), zap.String("region", region), zap.Error(err))
		return decimal.Zero, decimal.Zero, customerror.NewSupplyError(customerror.StockOrPriceUnavailable, product, region)
	}
	return c.pricing(cost), cost, nil
}

// Purchase buys a resource for accountID, records the PENDING order and starts
// polling it. A non-nil order with a DeliveryError means the order exists but
// the requester was not told about it.
func (c *Coordinator) Purchase(ctx context.Context, accountID int64, product, region string, tail []models.PackStep) (*models.Order, error) {
	productEntry, regionEntry, err := c.catalog.Resolve(product, region)
	if err != nil {
		return nil, err
	}

	price, cost, err := c.Quote(ctx, product, region)
	if err != nil {
		c.metrics.Purchases.WithLabelValues("unavailable").Inc()
		return nil, err
	}

	balance, err := c.ledger.Balance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("read balance of %d: %w", accountID, err)
	}
	if balance.LessThan(price) {
		c.metrics.Purchases.WithLabelValues("insufficient_balance").Inc()
		return nil, customerror.NewBalanceError(price, balance)
	}

	attempts := 0
	activation, err := retry.DoRetryWithResult(ctx, func() (*supplier.Activation, error) {
		attempts++
		return c.acquire(ctx, productEntry.Code, regionEntry.Code, product)
	}, retry.Config{Attempts: c.config.PurchaseAttempts, Policy: c.purchasePolicy})
	if err != nil {
		return nil, c.purchaseFailure(ctx, product, region, attempts, err)
	}

	// A paid activation is recorded or released even if the requester left.
	held := context.WithoutCancel(ctx)
	order := models.Order{
		ID:         activation.ID,
		AccountID:  accountID,
		ResourceID: activation.Phone,
		Product:    product,
		Region:     region,
		Price:      price,
		Cost:       cost,
		Status:     models.PendingStatus,
		CreatedAt:  c.now(),
		PackSteps:  tail,
	}

	if err = c.ledger.RecordOrder(held, order); err != nil {
		c.cancelQuietly(held, activation.ID)
		c.metrics.Purchases.WithLabelValues("not_recorded").Inc()

		var duplicate *customerror.DuplicateResourceError
		if errors.As(err, &duplicate) {
			return nil, customerror.NewPurchaseExhaustedError(attempts, err)
		}
		return nil, err
	}
	c.metrics.Purchases.WithLabelValues("accepted").Inc()
	logger.Log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("account_id", accountID),
		zap.String("product", product),
		zap.String("region", region),
		zap.String("price", price.StringFixed(2)),
	)

	c.launch(order)

	err = c.notify(held, accountID, frontend.Message{
		Kind:    frontend.OrderCreated,
		OrderID: order.ID,
		Text:    fmt.Sprintf("Number %s for %s, %s debited. Waiting for the code.", order.ResourceID, product, price.StringFixed(2)),
		Actions: AllowedActions(WaitingState),
	})
	if err != nil {
		return &order, customerror.NewDeliveryError(order.ID, err)
	}
	return &order, nil
}

// acquire buys one activation and rejects resources already sold or denylisted.
func (c *Coordinator) acquire(ctx context.Context, serviceCode, countryCode, product string) (*supplier.Activation, error) {
	activation, err := c.supplier.Purchase(ctx, serviceCode, countryCode)
	if err != nil {
		return nil, err
	}
	held := context.WithoutCancel(ctx)

	used, err := c.ledger.IsResourceUsed(held, activation.Phone, product)
	if err != nil {
		c.cancelQuietly(held, activation.ID)
		return nil, fmt.Errorf("check resource %s: %w", activation.Phone, err)
	}
	if used {
		logger.Log.Info("supplier returned a used resource",
			zap.String("order_id", activation.ID),
			zap.String("resource", activation.Phone),
			zap.String("product", product),
		)
		c.cancelQuietly(held, activation.ID)
		return nil, customerror.NewDuplicateResourceError(activation.Phone, product)
	}
	return activation, nil
}

func (c *Coordinator) purchasePolicy(_ int, err error) retry.Decision {
	var duplicate *customerror.DuplicateResourceError
	switch {
	case errors.Is(err, supplier.ErrOutOfStock):
		return retry.Stop()
	case errors.As(err, &duplicate):
		return retry.After(c.config.DuplicateDelay)
	default:
		return retry.After(c.config.FailureDelay)
	}
}

func (c *Coordinator) purchaseFailure(ctx context.Context, product, region string, attempts int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, supplier.ErrOutOfStock) {
		c.metrics.Purchases.WithLabelValues("out_of_stock").Inc()
		return customerror.NewSupplyError(customerror.OutOfStock, product, region)
	}

	c.metrics.Purchases.WithLabelValues("exhausted").Inc()
	if errors.Is(err, supplier.ErrNoFunds) {
		err = fmt.Errorf("%w: %w", customerror.NewSupplyError(customerror.NoUpstreamFunds, product, region), err)
	}
	logger.Log.Warn("purchase exhausted", zap.String("product", product), zap.Int("attempts", attempts), zap.Error(err))
	return customerror.NewPurchaseExhaustedError(attempts, err)
}
