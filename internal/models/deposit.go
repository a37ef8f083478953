package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DepositSource string

const (
	WebhookDeposit  DepositSource = "webhook"
	OperatorDeposit DepositSource = "operator"
)

type Deposit struct {
	ID        uuid.UUID       `json:"id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Source    DepositSource   `json:"source"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewDeposit(accountID int64, amount decimal.Decimal, source DepositSource, reference string) Deposit {
	return Deposit{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Source:    source,
		Reference: reference,
		CreatedAt: time.Now(),
	}
}
