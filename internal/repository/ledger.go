package repository

import (
	"context"
	"time"

	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
)

// Ledger is the single entry point to accounts, orders and the denylist.
type Ledger struct {
	Accounts  *AccountRepository
	Orders    *OrderRepository
	Blocked   *BlockedRepository
	Deposits  *DepositRepository
	Operators *OperatorRepository
	Stock     *StockRepository
}

func NewLedger(dbObj *db.DB) *Ledger {
	return &Ledger{
		Accounts:  NewAccountRepository(dbObj),
		Orders:    NewOrderRepository(dbObj),
		Blocked:   NewBlockedRepository(dbObj),
		Deposits:  NewDepositRepository(dbObj),
		Operators: NewOperatorRepository(dbObj),
		Stock:     NewStockRepository(dbObj),
	}
}

func (ledger *Ledger) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	account, err := ledger.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (ledger *Ledger) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return ledger.Accounts.Credit(ctx, accountID, amount)
}

func (ledger *Ledger) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	return ledger.Accounts.Debit(ctx, accountID, amount)
}

func (ledger *Ledger) RecordOrder(ctx context.Context, order models.Order) error {
	return ledger.Orders.Create(ctx, order)
}

func (ledger *Ledger) Order(ctx context.Context, orderID string) (*models.Order, error) {
	return ledger.Orders.GetByID(ctx, orderID)
}

func (ledger *Ledger) SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (bool, error) {
	return ledger.Orders.UpdateStatus(ctx, orderID, status)
}

func (ledger *Ledger) Refund(ctx context.Context, orderID string) (bool, error) {
	return ledger.Orders.Refund(ctx, orderID)
}

func (ledger *Ledger) IsResourceUsed(ctx context.Context, resourceID, product string) (bool, error) {
	return ledger.Orders.IsResourceUsed(ctx, resourceID, product)
}

func (ledger *Ledger) BlockResource(ctx context.Context, resourceID, product string) error {
	return ledger.Blocked.Block(ctx, resourceID, product)
}

func (ledger *Ledger) ListInFlightOrders(ctx context.Context) ([]models.Order, error) {
	return ledger.Orders.GetListInFlight(ctx)
}

func (ledger *Ledger) RecordDeposit(ctx context.Context, deposit models.Deposit) error {
	return ledger.Deposits.Create(ctx, deposit)
}

// SalesSince returns the number of completed orders, their total price and
// their total supplier cost.
func (ledger *Ledger) SalesSince(ctx context.Context, since time.Time) (int, decimal.Decimal, decimal.Decimal, error) {
	count, sales, cost, err := ledger.Orders.GetSalesSince(ctx, since)
	if err != nil {
		return 0, decimal.Zero, decimal.Zero, err
	}
	return count, models.FromCents(sales), models.FromCents(cost), nil
}
