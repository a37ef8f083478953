package customerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCustomErrors_HTTPCodes(t *testing.T) {
	testCases := []struct {
		name     string
		err      CustomError
		expected int
	}{
		{name: "unique", err: NewUniqueViolationError("x"), expected: http.StatusUnprocessableEntity},
		{name: "pg", err: NewCommonPGError("x"), expected: http.StatusInternalServerError},
		{name: "configuration", err: NewConfigurationError("product", "icq"), expected: http.StatusBadRequest},
		{name: "supply", err: NewSupplyError(OutOfStock, "whatsapp", "france"), expected: http.StatusConflict},
		{name: "balance", err: NewBalanceError(decimal.NewFromInt(2), decimal.NewFromInt(1)), expected: http.StatusPaymentRequired},
		{name: "ambiguous cancel", err: NewSupplierCancelAmbiguousError("BAD_STATUS"), expected: http.StatusBadGateway},
		{name: "exhausted", err: NewPurchaseExhaustedError(5, errors.New("x")), expected: http.StatusServiceUnavailable},
		{name: "illegal", err: NewIllegalTransitionError("1", "cancel", "CODE_DELIVERED"), expected: http.StatusConflict},
		{name: "owner", err: NewNotOwnerError("1", 2), expected: http.StatusForbidden},
		{name: "not active", err: NewOrderNotActiveError("1"), expected: http.StatusNotFound},
		{name: "too early", err: NewCancelTooEarlyError("1"), expected: http.StatusTooEarly},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.GetHTTPCode())
			assert.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestWrappedErrors(t *testing.T) {
	cause := errors.New("NO_NUMBERS")
	err := fmt.Errorf("buy: %w", NewPurchaseExhaustedError(5, cause))

	var exhausted *PurchaseExhaustedError
	assert.True(t, errors.As(err, &exhausted))
	assert.ErrorIs(t, err, cause)

	delivery := NewDeliveryError("42", cause)
	assert.ErrorIs(t, delivery, cause)
	assert.Contains(t, delivery.Error(), "42")
}

func TestBalanceError_Message(t *testing.T) {
	err := NewBalanceError(decimal.RequireFromString("14.04"), decimal.RequireFromString("3.5"))
	assert.Equal(t, "insufficient balance: price 14.04, balance 3.50", err.Error())
}
