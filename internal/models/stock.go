package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const StockAvailable = "AVAILABLE"

// StockAccount is a pre-provisioned messaging-app account kept for sale.
type StockAccount struct {
	Phone         string
	SessionString string
	Password2FA   *string
	Cost          decimal.Decimal
	Origin        string
	AddedAt       time.Time
	Status        string
}
