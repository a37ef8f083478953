package service

import "github.com/shopspring/decimal"

// PricingPolicy turns a supplier cost into a selling price.
type PricingPolicy func(cost decimal.Decimal) decimal.Decimal

// MultiplierPricing multiplies the cost by every factor and rounds half away
// from zero to cents.
func MultiplierPricing(factors []decimal.Decimal) PricingPolicy {
	return func(cost decimal.Decimal) decimal.Decimal {
		price := cost
		for _, factor := range factors {
			price = price.Mul(factor)
		}
		return price.Round(2)
	}
}
