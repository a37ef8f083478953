package schemas

import "github.com/shopspring/decimal"

type BalanceResponse struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func NewBalanceResponse(accountID int64, balance decimal.Decimal) BalanceResponse {
	return BalanceResponse{AccountID: accountID, Balance: balance.Round(2)}
}
