package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountsHandler_GetBalance(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Balance", mock.Anything, int64(227390137892339722)).Return(decimal.RequireFromString("3.5"), nil)
	ledger.On("Balance", mock.Anything, int64(2)).Return(decimal.Zero, errors.New("database error"))

	router := chi.NewRouter()
	router.Get("/api/accounts/{accountID}/balance", NewAccountsHandler(ledger).GetBalance)

	w := serve(router, http.MethodGet, "/api/accounts/227390137892339722/balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	var response schemas.BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(227390137892339722), response.AccountID)
	assert.Equal(t, "3.50", response.Balance.StringFixed(2))

	w = serve(router, http.MethodGet, "/api/accounts/abc/balance", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodGet, "/api/accounts/2/balance", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func asOperator(req *http.Request, accountID int64) *http.Request {
	ctx := context.WithValue(req.Context(), OperatorContextKey, &models.Operator{AccountID: accountID, Name: "owner"})
	return req.WithContext(ctx)
}

func TestAdminHandler_Deposit(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		setup  func(m *MockLedger)
		status int
	}{
		{
			name: "credited",
			body: `{"account_id": 7, "amount": "10.50", "reference": "cash"}`,
			setup: func(m *MockLedger) {
				isTenFifty := mock.MatchedBy(func(amount decimal.Decimal) bool {
					return amount.Equal(decimal.RequireFromString("10.5"))
				})
				m.On("Deposit", mock.Anything, int64(1), int64(7), isTenFifty, "cash").
					Return(decimal.RequireFromString("12"), nil)
			},
			status: http.StatusOK,
		},
		{
			name: "negative amount",
			body: `{"account_id": 7, "amount": -1}`,
			setup: func(m *MockLedger) {
				m.On("Deposit", mock.Anything, int64(1), int64(7), mock.Anything, "").
					Return(decimal.Zero, service.ErrInvalidAmount)
			},
			status: http.StatusBadRequest,
		},
		{name: "malformed", body: `[]`, status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := new(MockLedger)
			if tc.setup != nil {
				tc.setup(ledger)
			}
			h := NewAdminHandler(ledger, ledger)

			req := asOperator(httptest.NewRequest(http.MethodPost, "/api/admin/deposit", strings.NewReader(tc.body)), 1)
			w := httptest.NewRecorder()
			h.Deposit(w, req)

			assert.Equal(t, tc.status, w.Code)
			ledger.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_Deposit_NoOperator(t *testing.T) {
	h := NewAdminHandler(new(MockLedger), new(MockLedger))

	w := httptest.NewRecorder()
	h.Deposit(w, httptest.NewRequest(http.MethodPost, "/api/admin/deposit", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_Stats(t *testing.T) {
	report := models.SalesReport{Orders: 2, Sales: decimal.RequireFromString("28.08"), Profit: decimal.RequireFromString("10.08")}
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	ledger := new(MockLedger)
	ledger.On("Today", mock.Anything).Return(report, nil)
	ledger.On("Report", mock.Anything, since).Return(report, nil)
	h := NewAdminHandler(ledger, ledger)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got models.SalesReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Orders)
	assert.Equal(t, "10.08", got.Profit.StringFixed(2))

	w = httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats?since=2024-03-01T00:00:00Z", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ledger.AssertExpectations(t)
}
