package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         string          `json:"id"`
	AccountID  int64           `json:"account_id"`
	ResourceID string          `json:"resource"`
	Product    string          `json:"product"`
	Region     string          `json:"region"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	PackSteps  []PackStep      `json:"pack_steps,omitempty"`
}

type OrderStatus string

const (
	PendingStatus   OrderStatus = "PENDING"
	CompletedStatus OrderStatus = "COMPLETED"
	RefundedStatus  OrderStatus = "REFUNDED"
)

func (status OrderStatus) IsTerminal() bool {
	return status == CompletedStatus || status == RefundedStatus
}

// PackStep is one purchase of a pack.
type PackStep struct {
	Product string `json:"product" yaml:"product"`
	Region  string `json:"region" yaml:"region"`
}

// NextStep splits the remaining steps into the head and the tail.
func (order *Order) NextStep() (PackStep, []PackStep, bool) {
	if len(order.PackSteps) == 0 {
		return PackStep{}, nil, false
	}
	tail := make([]PackStep, len(order.PackSteps)-1)
	copy(tail, order.PackSteps[1:])
	return order.PackSteps[0], tail, true
}

func (order *Order) SetPriceInCents(price, cost int64) {
	order.Price = FromCents(price)
	order.Cost = FromCents(cost)
}
