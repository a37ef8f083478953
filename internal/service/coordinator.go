package service

import (
	"context"
	"sync"
	"time"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/clients/supplier"
	"github.com/Bessima/quicksms/internal/config"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LedgerI interface {
	Balance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	RecordOrder(ctx context.Context, order models.Order) error
	Order(ctx context.Context, orderID string) (*models.Order, error)
	SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (bool, error)
	Refund(ctx context.Context, orderID string) (bool, error)
	IsResourceUsed(ctx context.Context, resourceID, product string) (bool, error)
	BlockResource(ctx context.Context, resourceID, product string) error
	ListInFlightOrders(ctx context.Context) ([]models.Order, error)
}

type CoordinatorConfig struct {
	PollInterval      time.Duration
	IdleLimit         int
	PurchaseAttempts  int
	DuplicateDelay    time.Duration
	FailureDelay      time.Duration
	ResumeConcurrency int
}

func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		PollInterval:      5 * time.Second,
		IdleLimit:         300,
		PurchaseAttempts:  5,
		DuplicateDelay:    time.Second,
		FailureDelay:      500 * time.Millisecond,
		ResumeConcurrency: 8,
	}
}

// Coordinator buys resources, polls every accepted order in its own
// goroutine and applies requester actions.
type Coordinator struct {
	ledger   LedgerI
	supplier supplier.SupplierClientI
	frontend frontend.FrontendClientI
	catalog  *config.Catalog
	pricing  PricingPolicy
	config   CoordinatorConfig
	metrics  *Metrics
	registry *registry

	rootCtx context.Context
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewCoordinator binds the polling tasks to rootCtx: cancelling it stops
// every task and leaves its order PENDING for the next Resume.
func NewCoordinator(
	rootCtx context.Context,
	ledger LedgerI,
	supplierClient supplier.SupplierClientI,
	frontendClient frontend.FrontendClientI,
	catalog *config.Catalog,
	coordinatorConfig CoordinatorConfig,
	metrics *Metrics,
) *Coordinator {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Coordinator{
		ledger:   ledger,
		supplier: supplierClient,
		frontend: frontendClient,
		catalog:  catalog,
		pricing:  MultiplierPricing(catalog.Pricing.Factors()),
		config:   coordinatorConfig,
		metrics:  metrics,
		registry: newRegistry(),
		rootCtx:  rootCtx,
		now:      time.Now,
	}
}

// Wait blocks until every polling task has returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// LiveTasks is the number of orders being polled.
func (c *Coordinator) LiveTasks() int {
	return c.registry.len()
}

// State reports the state of a polled order.
func (c *Coordinator) State(orderID string) (State, bool) {
	t, ok := c.registry.get(orderID)
	if !ok {
		return "", false
	}
	return t.current(), true
}

// launch starts the polling task of order unless one is already live.
func (c *Coordinator) launch(order models.Order) (*task, bool) {
	t := newTask(order)
	if !c.registry.add(t) {
		logger.Log.Warn("order already has a live task", zap.String("order_id", order.ID))
		return nil, false
	}

	ctx, cancel := context.WithCancel(c.rootCtx)
	t.stop = cancel
	c.metrics.LiveTasks.Inc()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.metrics.LiveTasks.Dec()
		defer c.registry.remove(t)
		defer cancel()

		c.watch(ctx, t)
	}()
	return t, true
}

func (c *Coordinator) notify(ctx context.Context, accountID int64, message frontend.Message) error {
	err := c.frontend.Notify(ctx, accountID, message)
	if err != nil {
		logger.Log.Warn("requester was not notified",
			zap.Int64("account_id", accountID),
			zap.String("order_id", message.OrderID),
			zap.String("kind", string(message.Kind)),
			zap.Error(err),
		)
	}
	return err
}

// cancelQuietly asks the supplier to cancel and ignores the answer.
func (c *Coordinator) cancelQuietly(ctx context.Context, activationID string) {
	result, err := c.supplier.Cancel(ctx, activationID)
	if err != nil {
		logger.Log.Warn("best-effort cancel failed", zap.String("order_id", activationID), zap.Error(err))
		return
	}
	logger.Log.Debug("best-effort cancel", zap.String("order_id", activationID), zap.String("answer", result.Raw))
}
