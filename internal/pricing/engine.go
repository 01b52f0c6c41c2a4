package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/pkg/config"
	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
	"github.com/greenmile-app/greenmile-backend/pkg/types"
)

// Totals is the engine's output: everything the pipeline writes back onto an
// order after a recompute pass.
type Totals struct {
	Subtotal           decimal.Decimal
	DiscountTotal      decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	TaxBreakdown       types.TaxBreakdown
	TaxTotal           decimal.Decimal
	DeliveryFee        decimal.Decimal
	OrderTotal         decimal.Decimal
}

// Engine computes order totals from a cart snapshot and its currently-applied
// promotions. Pure given its inputs: identical inputs produce identical
// totals on every invocation.
type Engine struct {
	cfg config.PricingConfig
}

// NewEngine builds a pricing engine over the injected tax and fee tables.
func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// ComputeTotals aggregates the line-item subtotal, applies the net discount of
// the applied promotions, computes each tax component against the discounted
// subtotal, selects the delivery fee bracket, and produces the order total.
// All monetary rounding is half-up to cents.
func (e *Engine) ComputeTotals(order *models.Order) Totals {
	subtotal := Subtotal(order.LineItems).Round(2)

	applied := appliedPromotions(order.Promotions)

	discountTotal := decimal.Zero
	for _, promo := range applied {
		discountTotal = discountTotal.Add(ComputeDiscount(promo, order.LineItems))
	}

	discountedSubtotal := subtotal.Sub(discountTotal)
	if discountedSubtotal.IsNegative() {
		discountedSubtotal = decimal.Zero
	}

	breakdown := make(types.TaxBreakdown, 0, len(e.cfg.TaxRates))
	taxTotal := decimal.Zero
	for _, rate := range e.cfg.TaxRates {
		amount := discountedSubtotal.Mul(rate.Rate).Div(hundred).Round(2)
		breakdown = append(breakdown, types.TaxComponent{Name: rate.Name, Rate: rate.Rate, Amount: amount})
		taxTotal = taxTotal.Add(amount)
	}

	deliveryFee := e.deliveryFee(order.FulfillmentMethod, discountedSubtotal, applied)

	orderTotal := discountedSubtotal.Add(taxTotal).Add(deliveryFee).Round(2)

	return Totals{
		Subtotal:           subtotal,
		DiscountTotal:      discountTotal,
		DiscountedSubtotal: discountedSubtotal,
		TaxBreakdown:       breakdown,
		TaxTotal:           taxTotal,
		DeliveryFee:        deliveryFee,
		OrderTotal:         orderTotal,
	}
}

// deliveryFee selects the bracket fee for delivery orders, forced to zero when
// an applied promotion voids the fee and is itself valid for delivery.
func (e *Engine) deliveryFee(method enums.FulfillmentMethod, discountedSubtotal decimal.Decimal, applied []models.Promotion) decimal.Decimal {
	if method != enums.FulfillmentDelivery {
		return decimal.Zero
	}
	for _, promo := range applied {
		if promo.VoidsDeliveryFee && promo.ValidForDelivery {
			return decimal.Zero
		}
	}
	return e.cfg.DeliveryFeeBrackets.FeeFor(discountedSubtotal)
}

// appliedPromotions extracts the promotion rules currently contributing to
// totals: applied, non-removed applications with their rule loaded.
func appliedPromotions(apps []models.PromotionApplication) []models.Promotion {
	var promos []models.Promotion
	for _, app := range apps {
		if !app.Applied || app.Removed || app.Promotion == nil {
			continue
		}
		promos = append(promos, *app.Promotion)
	}
	return promos
}
