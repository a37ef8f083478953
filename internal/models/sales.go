package models

import "github.com/shopspring/decimal"

type SalesReport struct {
	Orders int             `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
	Cost   decimal.Decimal `json:"cost"`
	Profit decimal.Decimal `json:"profit"`
}
