package models

import "github.com/shopspring/decimal"

type Account struct {
	ID      int64           `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

func NewAccount(accountID int64) Account {
	return Account{
		ID:      accountID,
		Balance: decimal.Zero,
	}
}

func (account *Account) SetBalance(cents int64) {
	account.Balance = FromCents(cents)
}
