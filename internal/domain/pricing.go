package domain

import "github.com/shopspring/decimal"

// PricingBreakdown captures the aggregated monetary results of pricing a cart.
// Amounts keep full precision; RoundMoney is applied only at persistence and
// display boundaries.
type PricingBreakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Lines    []LinePricingBreakdown
}

// LinePricingBreakdown stores the per-line pricing outputs.
type LinePricingBreakdown struct {
	ProductID string
	Service   ServiceVariant
	Quantity  int
	Rate      decimal.Decimal
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
}

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
