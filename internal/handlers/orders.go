package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/Bessima/quicksms/internal/service"
	"github.com/go-chi/chi/v5"
)

type CoordinatorI interface {
	Purchase(ctx context.Context, accountID int64, product, region string, tail []models.PackStep) (*models.Order, error)
	Act(ctx context.Context, accountID int64, orderID string, action service.Action) (*service.ActionResult, error)
	QuotePack(ctx context.Context, name string) (*service.PackQuote, error)
	StartPack(ctx context.Context, accountID int64, name string) (*models.Order, error)
	Catalog(ctx context.Context, region string) ([]service.CatalogEntry, error)
}

// OrdersHandler serves the front-end: purchases, order buttons, packs and the
// catalog.
type OrdersHandler struct {
	coordinator CoordinatorI
}

func NewOrdersHandler(coordinator CoordinatorI) *OrdersHandler {
	return &OrdersHandler{coordinator: coordinator}
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req schemas.OrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AccountID == 0 || req.Product == "" || req.Region == "" {
		writeMessage(w, r, http.StatusBadRequest, "account_id, product and region are required")
		return
	}

	order, err := h.coordinator.Purchase(r.Context(), req.AccountID, req.Product, req.Region, nil)
	h.respondWithOrder(w, r, order, err)
}

// Act applies a button press: finish, retry, cancel or report.
func (h *OrdersHandler) Act(w http.ResponseWriter, r *http.Request) {
	action, ok := service.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "unknown action")
		return
	}

	var req schemas.ActionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.coordinator.Act(r.Context(), req.AccountID, chi.URLParam(r, "orderID"), action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *OrdersHandler) QuotePack(w http.ResponseWriter, r *http.Request) {
	quote, err := h.coordinator.QuotePack(r.Context(), chi.URLParam(r, "pack"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, quote)
}

func (h *OrdersHandler) ConfirmPack(w http.ResponseWriter, r *http.Request) {
	var req schemas.ActionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AccountID == 0 {
		writeMessage(w, r, http.StatusBadRequest, "account_id is required")
		return
	}

	order, err := h.coordinator.StartPack(r.Context(), req.AccountID, chi.URLParam(r, "pack"))
	h.respondWithOrder(w, r, order, err)
}

func (h *OrdersHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		writeMessage(w, r, http.StatusBadRequest, "region is required")
		return
	}

	entries, err := h.coordinator.Catalog(r.Context(), region)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// respondWithOrder answers 201 for a created order, with a warning when the
// requester could not be notified.
func (h *OrdersHandler) respondWithOrder(w http.ResponseWriter, r *http.Request, order *models.Order, err error) {
	response := schemas.OrderResponse{Order: order, Actions: service.AllowedActions(service.WaitingState)}

	if err != nil {
		var delivery *customerror.DeliveryError
		if !errors.As(err, &delivery) || order == nil {
			writeError(w, r, err)
			return
		}
		response.Warning = delivery.Error()
	}
	writeJSON(w, r, http.StatusCreated, response)
}
