package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type BalanceReaderI interface {
	Balance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

type DepositorI interface {
	Deposit(ctx context.Context, operatorID, accountID int64, amount decimal.Decimal, reference string) (decimal.Decimal, error)
}

type StatsI interface {
	Report(ctx context.Context, since time.Time) (models.SalesReport, error)
	Today(ctx context.Context) (models.SalesReport, error)
}

type AccountsHandler struct {
	balances BalanceReaderI
}

func NewAccountsHandler(balances BalanceReaderI) *AccountsHandler {
	return &AccountsHandler{balances: balances}
}

func (h *AccountsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID == 0 {
		writeMessage(w, r, http.StatusBadRequest, "invalid account id")
		return
	}

	balance, err := h.balances.Balance(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, schemas.NewBalanceResponse(accountID, balance))
}

// AdminHandler serves operator-only endpoints behind the auth middleware.
type AdminHandler struct {
	deposits DepositorI
	stats    StatsI
}

func NewAdminHandler(deposits DepositorI, stats StatsI) *AdminHandler {
	return &AdminHandler{deposits: deposits, stats: stats}
}

func (h *AdminHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	operator := GetOperatorFromContext(r.Context())
	if operator == nil {
		writeMessage(w, r, http.StatusUnauthorized, "operator was not got")
		return
	}

	var req schemas.DepositRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := h.deposits.Deposit(r.Context(), operator.AccountID, req.AccountID, req.Amount, req.Reference)
	if err != nil {
		if isBadDeposit(err) {
			writeMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, schemas.NewBalanceResponse(req.AccountID, balance))
}

// Stats reports today's sales, or the sales since the RFC 3339 "since" query.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var report models.SalesReport
	var err error

	if raw := r.URL.Query().Get("since"); raw != "" {
		since, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			writeMessage(w, r, http.StatusBadRequest, "since must be an RFC 3339 time")
			return
		}
		report, err = h.stats.Report(r.Context(), since)
	} else {
		report, err = h.stats.Today(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func isBadDeposit(err error) bool {
	return errors.Is(err, service.ErrInvalidAmount) || errors.Is(err, service.ErrMissingAccount)
}
