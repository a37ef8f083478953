package handlers

import (
	"context"
	"time"

	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockCoordinator - mock for CoordinatorI
type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Purchase(ctx context.Context, accountID int64, product, region string, tail []models.PackStep) (*models.Order, error) {
	args := m.Called(ctx, accountID, product, region, tail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockCoordinator) Act(ctx context.Context, accountID int64, orderID string, action service.Action) (*service.ActionResult, error) {
	args := m.Called(ctx, accountID, orderID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActionResult), args.Error(1)
}

func (m *MockCoordinator) QuotePack(ctx context.Context, name string) (*service.PackQuote, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PackQuote), args.Error(1)
}

func (m *MockCoordinator) StartPack(ctx context.Context, accountID int64, name string) (*models.Order, error) {
	args := m.Called(ctx, accountID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockCoordinator) Catalog(ctx context.Context, region string) ([]service.CatalogEntry, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CatalogEntry), args.Error(1)
}

// MockOperatorStore - mock for OperatorStoreI
type MockOperatorStore struct {
	mock.Mock
}

func (m *MockOperatorStore) Login(ctx context.Context, accountID int64, password string) (*models.Operator, error) {
	args := m.Called(ctx, accountID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func (m *MockOperatorStore) Get(ctx context.Context, accountID int64) (*models.Operator, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

// MockLedger - mock for BalanceReaderI, DepositorI, StatsI and PaymentApplierI
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Deposit(ctx context.Context, operatorID, accountID int64, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	args := m.Called(ctx, operatorID, accountID, amount, reference)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Report(ctx context.Context, since time.Time) (models.SalesReport, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(models.SalesReport), args.Error(1)
}

func (m *MockLedger) Today(ctx context.Context) (models.SalesReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.SalesReport), args.Error(1)
}

func (m *MockLedger) ApplyPayment(ctx context.Context, event schemas.PaymentEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}
