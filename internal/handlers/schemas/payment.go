package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

const PaymentSucceeded = "payment.succeeded"

type PaymentEvent struct {
	Type string      `json:"type"`
	Data PaymentData `json:"data"`
}

type PaymentData struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Metadata PaymentMetadata `json:"metadata"`
}

type PaymentMetadata struct {
	AccountID AccountID `json:"accountId"`
}

// AccountID accepts both a JSON number and a JSON string: chat platform ids
// overflow float64, so senders usually quote them.
type AccountID int64

func (id *AccountID) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*id = 0
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("account id %s: %w", raw, err)
	}
	*id = AccountID(value)
	return nil
}

func (id AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(id), 10))
}

type DepositRequest struct {
	AccountID int64           `json:"account_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference string          `json:"reference"`
}

type PaymentResponse struct {
	Applied bool `json:"applied"`
}
