package services

import (
	"context"

	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// PricingEngine computes line subtotals and cart aggregates. It is stateless:
// every call works purely on its inputs, so a single instance is shared
// safely across requests. The tax rate is passed in per call: callers read
// it from settings each time so a mid-session rate change takes effect on
// the next checkout.
type PricingEngine struct {
	logger func(ctx context.Context, event string, fields map[string]any)
}

// PricingEngineDeps bundles collaborators for the pricing engine.
type PricingEngineDeps struct {
	Logger func(ctx context.Context, event string, fields map[string]any)
}

// NewPricingEngine constructs a PricingEngine.
func NewPricingEngine(deps PricingEngineDeps) *PricingEngine {
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &PricingEngine{logger: logger}
}

// RateFor returns the unit price of the product for the requested treatment.
// Product records come from external data, so a missing or negative rate is
// treated as zero with a warning event rather than an error.
func (e *PricingEngine) RateFor(ctx context.Context, product domain.Product, variant domain.ServiceVariant) decimal.Decimal {
	var rate decimal.Decimal
	switch variant {
	case domain.ServiceIron:
		rate = product.Rates.Iron
	case domain.ServiceWashAndIron:
		rate = product.Rates.WashAndIron
	case domain.ServiceDryClean:
		rate = product.Rates.DryClean
	default:
		e.logger(ctx, "pricing_unknown_service_variant", map[string]any{"productId": product.ID, "service": string(variant)})
		return decimal.Zero
	}
	if rate.IsNegative() {
		e.logger(ctx, "pricing_negative_rate_clamped", map[string]any{"productId": product.ID, "service": string(variant), "rate": rate.String()})
		return decimal.Zero
	}
	return rate
}

// LineSubtotal computes quantity * rate * (1 - discountPct/100). Quantity is
// clamped to >= 0 and discountPct to [0,100]; clamping is logged so bad
// caller data stays visible. Full precision is kept; rounding happens at
// display and charge time only.
func (e *PricingEngine) LineSubtotal(ctx context.Context, quantity int, rate decimal.Decimal, discountPct decimal.Decimal) decimal.Decimal {
	if quantity < 0 {
		e.logger(ctx, "pricing_quantity_clamped", map[string]any{"quantity": quantity})
		quantity = 0
	}
	if rate.IsNegative() {
		e.logger(ctx, "pricing_negative_rate_clamped", map[string]any{"rate": rate.String()})
		rate = decimal.Zero
	}
	discountPct = e.clampDiscount(ctx, discountPct)

	qty := decimal.NewFromInt(int64(quantity))
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(oneHundred))
	return qty.Mul(rate).Mul(factor)
}

// PriceLine resolves the rate from the catalogue entry and prices one line.
func (e *PricingEngine) PriceLine(ctx context.Context, product domain.Product, variant domain.ServiceVariant, quantity int, discountPct decimal.Decimal) domain.LinePricingBreakdown {
	rate := e.RateFor(ctx, product, variant)
	discountPct = e.clampDiscount(ctx, discountPct)
	subtotal := e.LineSubtotal(ctx, quantity, rate, discountPct)

	clampedQty := quantity
	if clampedQty < 0 {
		clampedQty = 0
	}
	gross := decimal.NewFromInt(int64(clampedQty)).Mul(rate)

	return domain.LinePricingBreakdown{
		ProductID: product.ID,
		Service:   variant,
		Quantity:  clampedQty,
		Rate:      rate,
		Subtotal:  subtotal,
		// Informational for receipt display; subtotal already reflects it.
		Discount: gross.Sub(subtotal),
	}
}

// Aggregate sums priced lines into the order totals. An empty line set yields
// all-zero totals; rejecting empty carts is a checkout precondition, not a
// pricing concern.
func (e *PricingEngine) Aggregate(ctx context.Context, lines []domain.LinePricingBreakdown, taxRatePct decimal.Decimal) domain.PricingBreakdown {
	if taxRatePct.IsNegative() {
		e.logger(ctx, "pricing_negative_tax_rate_clamped", map[string]any{"taxRatePct": taxRatePct.String()})
		taxRatePct = decimal.Zero
	}

	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal)
		discount = discount.Add(line.Discount)
	}

	tax := subtotal.Mul(taxRatePct.Div(oneHundred))
	total := subtotal.Add(tax)

	out := domain.PricingBreakdown{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
	if len(lines) > 0 {
		out.Lines = make([]domain.LinePricingBreakdown, len(lines))
		copy(out.Lines, lines)
	}
	return out
}

func (e *PricingEngine) clampDiscount(ctx context.Context, discountPct decimal.Decimal) decimal.Decimal {
	if discountPct.IsNegative() {
		e.logger(ctx, "pricing_discount_clamped", map[string]any{"discountPct": discountPct.String()})
		return decimal.Zero
	}
	if discountPct.GreaterThan(oneHundred) {
		e.logger(ctx, "pricing_discount_clamped", map[string]any{"discountPct": discountPct.String()})
		return oneHundred
	}
	return discountPct
}
