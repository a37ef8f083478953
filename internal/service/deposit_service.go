package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrMissingAccount = errors.New("account id is required")
)

type DepositLedgerI interface {
	Balance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	RecordDeposit(ctx context.Context, deposit models.Deposit) error
}

type DepositService struct {
	ledger  DepositLedgerI
	metrics *Metrics
}

func NewDepositService(ledger DepositLedgerI, metrics *Metrics) *DepositService {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &DepositService{ledger: ledger, metrics: metrics}
}

// ApplyPayment credits a succeeded payment once per payment id. Other event
// types are ignored and reported as not applied.
func (service *DepositService) ApplyPayment(ctx context.Context, event schemas.PaymentEvent) (bool, error) {
	if event.Type != schemas.PaymentSucceeded {
		logger.Log.Info("payment event ignored", zap.String("type", event.Type))
		return false, nil
	}

	accountID := int64(event.Data.Metadata.AccountID)
	_, err := service.deposit(ctx, accountID, event.Data.Amount, models.WebhookDeposit, event.Data.ID)
	if err != nil {
		var replay *customerror.UniqueViolationError
		if errors.As(err, &replay) {
			logger.Log.Info("payment already applied", zap.String("reference", event.Data.ID))
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Deposit is an operator credit. It returns the new balance.
func (service *DepositService) Deposit(ctx context.Context, operatorID, accountID int64, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	balance, err := service.deposit(ctx, accountID, amount, models.OperatorDeposit, reference)
	if err != nil {
		return decimal.Zero, err
	}
	logger.Log.Info("operator deposit",
		zap.Int64("operator_id", operatorID),
		zap.Int64("account_id", accountID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return balance, nil
}

func (service *DepositService) deposit(ctx context.Context, accountID int64, amount decimal.Decimal, source models.DepositSource, reference string) (decimal.Decimal, error) {
	if accountID == 0 {
		return decimal.Zero, ErrMissingAccount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	deposit := models.NewDeposit(accountID, amount.Round(2), source, reference)
	if err := service.ledger.RecordDeposit(ctx, deposit); err != nil {
		return decimal.Zero, fmt.Errorf("record deposit for %d: %w", accountID, err)
	}
	service.metrics.Deposits.WithLabelValues(string(source)).Inc()

	return service.ledger.Balance(ctx, accountID)
}
