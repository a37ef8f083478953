package customerror

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

type CustomError interface {
	Error() string
	GetHTTPCode() int
}

type UniqueViolationError struct {
	httpCode int
	message  string
}

func NewUniqueViolationError(msg string) *UniqueViolationError {
	return &UniqueViolationError{httpCode: http.StatusUnprocessableEntity, message: msg}
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation: %s", e.message)
}

func (e *UniqueViolationError) GetHTTPCode() int {
	return e.httpCode
}

type CommonPGError struct {
	httpCode int
	message  string
}

func NewCommonPGError(msg string) *CommonPGError {
	return &CommonPGError{httpCode: http.StatusInternalServerError, message: msg}
}

func (e *CommonPGError) Error() string {
	return e.message
}

func (e *CommonPGError) GetHTTPCode() int {
	return e.httpCode
}

// ConfigurationError is an unknown product, region or pack.
type ConfigurationError struct {
	Kind string
	Key  string
}

func NewConfigurationError(kind, key string) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Key: key}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

func (e *ConfigurationError) GetHTTPCode() int {
	return http.StatusBadRequest
}

type SupplyReason string

const (
	StockOrPriceUnavailable SupplyReason = "STOCK_OR_PRICE_UNAVAILABLE"
	OutOfStock              SupplyReason = "OUT_OF_STOCK"
	NoUpstreamFunds         SupplyReason = "NO_FUNDS"
)

// SupplyError means the supplier cannot deliver right now. Nothing was debited.
type SupplyError struct {
	Reason  SupplyReason
	Product string
	Region  string
}

func NewSupplyError(reason SupplyReason, product, region string) *SupplyError {
	return &SupplyError{Reason: reason, Product: product, Region: region}
}

func (e *SupplyError) Error() string {
	return fmt.Sprintf("%s for %s in %s", e.Reason, e.Product, e.Region)
}

func (e *SupplyError) GetHTTPCode() int {
	return http.StatusConflict
}

// DuplicateResourceError drives a purchase retry and is never shown to requesters.
type DuplicateResourceError struct {
	ResourceID string
	Product    string
}

func NewDuplicateResourceError(resourceID, product string) *DuplicateResourceError {
	return &DuplicateResourceError{ResourceID: resourceID, Product: product}
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("resource %s already used for %s", e.ResourceID, e.Product)
}

func (e *DuplicateResourceError) GetHTTPCode() int {
	return http.StatusServiceUnavailable
}

type BalanceError struct {
	Price   decimal.Decimal
	Balance decimal.Decimal
}

func NewBalanceError(price, balance decimal.Decimal) *BalanceError {
	return &BalanceError{Price: price, Balance: balance}
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: price %s, balance %s", e.Price.StringFixed(2), e.Balance.StringFixed(2))
}

func (e *BalanceError) GetHTTPCode() int {
	return http.StatusPaymentRequired
}

// DeliveryError is a warning: the order exists and its funds stay committed.
type DeliveryError struct {
	OrderID string
	Err     error
}

func NewDeliveryError(orderID string, err error) *DeliveryError {
	return &DeliveryError{OrderID: orderID, Err: err}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("order %s created but requester was not notified: %v", e.OrderID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) GetHTTPCode() int {
	return http.StatusCreated
}

// SupplierCancelAmbiguousError carries the raw supplier answer to a cancel.
type SupplierCancelAmbiguousError struct {
	Response string
}

func NewSupplierCancelAmbiguousError(response string) *SupplierCancelAmbiguousError {
	return &SupplierCancelAmbiguousError{Response: response}
}

func (e *SupplierCancelAmbiguousError) Error() string {
	return fmt.Sprintf("cancel not confirmed by supplier: %s", e.Response)
}

func (e *SupplierCancelAmbiguousError) GetHTTPCode() int {
	return http.StatusBadGateway
}

type PurchaseExhaustedError struct {
	Attempts int
	Err      error
}

func NewPurchaseExhaustedError(attempts int, err error) *PurchaseExhaustedError {
	return &PurchaseExhaustedError{Attempts: attempts, Err: err}
}

func (e *PurchaseExhaustedError) Error() string {
	return fmt.Sprintf("no resource after %d attempts: %v", e.Attempts, e.Err)
}

func (e *PurchaseExhaustedError) Unwrap() error {
	return e.Err
}

func (e *PurchaseExhaustedError) GetHTTPCode() int {
	return http.StatusServiceUnavailable
}

type IllegalTransitionError struct {
	OrderID string
	Action  string
	State   string
}

func NewIllegalTransitionError(orderID, action, state string) *IllegalTransitionError {
	return &IllegalTransitionError{OrderID: orderID, Action: action, State: state}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("action %s is not allowed for order %s in state %s", e.Action, e.OrderID, e.State)
}

func (e *IllegalTransitionError) GetHTTPCode() int {
	return http.StatusConflict
}

type NotOwnerError struct {
	OrderID   string
	AccountID int64
}

func NewNotOwnerError(orderID string, accountID int64) *NotOwnerError {
	return &NotOwnerError{OrderID: orderID, AccountID: accountID}
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("order %s does not belong to account %d", e.OrderID, e.AccountID)
}

func (e *NotOwnerError) GetHTTPCode() int {
	return http.StatusForbidden
}

type OrderNotActiveError struct {
	OrderID string
}

func NewOrderNotActiveError(orderID string) *OrderNotActiveError {
	return &OrderNotActiveError{OrderID: orderID}
}

func (e *OrderNotActiveError) Error() string {
	return fmt.Sprintf("order %s is not being processed", e.OrderID)
}

func (e *OrderNotActiveError) GetHTTPCode() int {
	return http.StatusNotFound
}

// CancelTooEarlyError asks the requester to wait before cancelling again.
type CancelTooEarlyError struct {
	OrderID string
}

func NewCancelTooEarlyError(orderID string) *CancelTooEarlyError {
	return &CancelTooEarlyError{OrderID: orderID}
}

func (e *CancelTooEarlyError) Error() string {
	return "too early to cancel, wait about 2 minutes after the purchase and retry"
}

func (e *CancelTooEarlyError) GetHTTPCode() int {
	return http.StatusTooEarly
}
