package handlers

import (
	"context"
	"net/http"

	"github.com/Bessima/quicksms/internal/handlers/schemas"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"go.uber.org/zap"
)

type PaymentApplierI interface {
	ApplyPayment(ctx context.Context, event schemas.PaymentEvent) (bool, error)
}

// PaymentHandler receives payment provider webhooks.
type PaymentHandler struct {
	deposits PaymentApplierI
}

func NewPaymentHandler(deposits PaymentApplierI) *PaymentHandler {
	return &PaymentHandler{deposits: deposits}
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var event schemas.PaymentEvent
	if !decodeBody(w, r, &event) {
		return
	}

	applied, err := h.deposits.ApplyPayment(r.Context(), event)
	if err != nil {
		if isBadDeposit(err) {
			writeMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.Error("payment was not applied", zap.String("reference", event.Data.ID), zap.Error(err))
		writeMessage(w, r, http.StatusInternalServerError, "payment was not applied")
		return
	}
	writeJSON(w, r, http.StatusOK, schemas.PaymentResponse{Applied: applied})
}
