package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/clients/supplier"
	"github.com/Bessima/quicksms/internal/config"
	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `
products:
  whatsapp: {code: wa, name: Whatsapp}
  telegram: {code: tg, name: Telegram}
regions:
  france: {code: "78", name: France}
  canada: {code: "36", name: Canada}
packs:
  wa-tg:
    title: Whatsapp + Telegram
    steps:
      - {product: whatsapp, region: france}
      - {product: telegram, region: canada}
pricing:
  multipliers: [1.3, 1.2, 0.9]
  cost_conversion: 0.9
`

// fakeLedger keeps the same guarantees as the SQL ledger: guarded debit,
// unique live (resource, product) pairs and compare-and-set status writes.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[int64]decimal.Decimal
	orders   map[string]*models.Order
	blocked  map[string]bool
	debits   int
	credits  int
	listErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: map[int64]decimal.Decimal{},
		orders:   map[string]*models.Order{},
		blocked:  map[string]bool{},
	}
}

func pairKey(resource, product string) string {
	return resource + "|" + product
}

func (l *fakeLedger) Balance(_ context.Context, accountID int64) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountID], nil
}

func (l *fakeLedger) RecordOrder(_ context.Context, order models.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[order.AccountID]
	if balance.LessThan(order.Price) {
		return customerror.NewBalanceError(order.Price, balance)
	}
	for _, existing := range l.orders {
		if existing.Status != models.RefundedStatus && pairKey(existing.ResourceID, existing.Product) == pairKey(order.ResourceID, order.Product) {
			return customerror.NewDuplicateResourceError(order.ResourceID, order.Product)
		}
	}

	l.balances[order.AccountID] = balance.Sub(order.Price)
	l.debits++
	stored := order
	l.orders[order.ID] = &stored
	return nil
}

func (l *fakeLedger) Order(_ context.Context, orderID string) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[orderID]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	copied := *order
	return &copied, nil
}

func (l *fakeLedger) SetStatus(_ context.Context, orderID string, status models.OrderStatus) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[orderID]
	if !ok || order.Status != models.PendingStatus {
		return false, nil
	}
	order.Status = status
	return true, nil
}

func (l *fakeLedger) Refund(_ context.Context, orderID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[orderID]
	if !ok || order.Status != models.PendingStatus {
		return false, nil
	}
	order.Status = models.RefundedStatus
	l.balances[order.AccountID] = l.balances[order.AccountID].Add(order.Price)
	l.credits++
	return true, nil
}

func (l *fakeLedger) IsResourceUsed(_ context.Context, resourceID, product string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.blocked[pairKey(resourceID, product)] {
		return true, nil
	}
	for _, order := range l.orders {
		if pairKey(order.ResourceID, order.Product) == pairKey(resourceID, product) {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) BlockResource(_ context.Context, resourceID, product string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocked[pairKey(resourceID, product)] = true
	return nil
}

func (l *fakeLedger) ListInFlightOrders(_ context.Context) ([]models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listErr != nil {
		return nil, l.listErr
	}
	orders := []models.Order{}
	for _, order := range l.orders {
		if order.Status == models.PendingStatus {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (l *fakeLedger) status(orderID string) models.OrderStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if order, ok := l.orders[orderID]; ok {
		return order.Status
	}
	return ""
}

func (l *fakeLedger) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debits, l.credits
}

type purchaseResult struct {
	activation *supplier.Activation
	err        error
}

// fakeSupplier hands out scripted purchases, then fresh activations
// act-1, act-2... Poll answers are queued per activation, then WAITING.
type fakeSupplier struct {
	mu           sync.Mutex
	quote        decimal.Decimal
	quoteErr     error
	purchases    []purchaseResult
	statuses     map[string][]supplier.Status
	cancelResult supplier.CancelResult
	cancelErr    error

	issued        int
	purchaseCalls int
	pollCalls     map[string]int
	cancelled     []string
	finalized     []string
	anotherCode   []string
}

func newFakeSupplier() *fakeSupplier {
	return &fakeSupplier{
		quote:        decimal.NewFromInt(10),
		statuses:     map[string][]supplier.Status{},
		pollCalls:    map[string]int{},
		cancelResult: supplier.CancelResult{Outcome: supplier.CancelConfirmed, Raw: "ACCESS_CANCEL"},
	}
}

func (s *fakeSupplier) Purchase(_ context.Context, _, _ string) (*supplier.Activation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchaseCalls++

	if len(s.purchases) > 0 {
		next := s.purchases[0]
		s.purchases = s.purchases[1:]
		return next.activation, next.err
	}
	s.issued++
	return &supplier.Activation{ID: fmt.Sprintf("act-%d", s.issued), Phone: fmt.Sprintf("3361000000%d", s.issued)}, nil
}

func (s *fakeSupplier) Quote(_ context.Context, _, _ string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote, s.quoteErr
}

func (s *fakeSupplier) PollStatus(_ context.Context, activationID string) (supplier.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollCalls[activationID]++

	queue := s.statuses[activationID]
	if len(queue) == 0 {
		return supplier.Status{Kind: supplier.Waiting}, nil
	}
	s.statuses[activationID] = queue[1:]
	return queue[0], nil
}

func (s *fakeSupplier) RequestAnotherCode(_ context.Context, activationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anotherCode = append(s.anotherCode, activationID)
	return nil
}

func (s *fakeSupplier) Finalize(_ context.Context, activationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = append(s.finalized, activationID)
	return nil
}

func (s *fakeSupplier) Cancel(ctx context.Context, activationID string) (supplier.CancelResult, error) {
	if err := ctx.Err(); err != nil {
		return supplier.CancelResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, activationID)
	return s.cancelResult, s.cancelErr
}

func (s *fakeSupplier) queue(activationID string, statuses ...supplier.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[activationID] = append(s.statuses[activationID], statuses...)
}

func (s *fakeSupplier) polls(activationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCalls[activationID]
}

func (s *fakeSupplier) cancels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cancelled...)
}

type sentMessage struct {
	accountID int64
	message   frontend.Message
}

type fakeFrontend struct {
	mu         sync.Mutex
	sent       []sentMessage
	notifyErr  error
	unresolved map[int64]bool
}

func newFakeFrontend() *fakeFrontend {
	return &fakeFrontend{unresolved: map[int64]bool{}}
}

func (f *fakeFrontend) Resolve(_ context.Context, accountID int64) (*frontend.Requester, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unresolved[accountID] {
		return nil, frontend.ErrUnknownRequester
	}
	return &frontend.Requester{AccountID: accountID}, nil
}

func (f *fakeFrontend) Notify(_ context.Context, accountID int64, message frontend.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.sent = append(f.sent, sentMessage{accountID: accountID, message: message})
	return nil
}

func (f *fakeFrontend) messages(kind frontend.MessageKind) []frontend.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages := []frontend.Message{}
	for _, sent := range f.sent {
		if sent.message.Kind == kind {
			messages = append(messages, sent.message)
		}
	}
	return messages
}

type harness struct {
	coordinator *Coordinator
	ledger      *fakeLedger
	supplier    *fakeSupplier
	frontend    *fakeFrontend
	metrics     *Metrics
}

func testConfig() CoordinatorConfig {
	return CoordinatorConfig{
		PollInterval:      time.Millisecond,
		IdleLimit:         1_000_000,
		PurchaseAttempts:  5,
		DuplicateDelay:    time.Millisecond,
		FailureDelay:      time.Millisecond,
		ResumeConcurrency: 2,
	}
}

func newHarness(t *testing.T, coordinatorConfig CoordinatorConfig) *harness {
	t.Helper()
	catalog, err := config.ParseCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		ledger:   newFakeLedger(),
		supplier: newFakeSupplier(),
		frontend: newFakeFrontend(),
		metrics:  NewMetrics(nil),
	}
	h.coordinator = NewCoordinator(ctx, h.ledger, h.supplier, h.frontend, catalog, coordinatorConfig, h.metrics)

	t.Cleanup(func() {
		cancel()
		h.coordinator.Wait()
	})
	return h
}
