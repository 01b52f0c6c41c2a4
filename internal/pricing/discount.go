package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the monetary discount a single promotion
// contributes against the given line items. Pure: no side effects, no I/O.
// Intermediate sums stay unrounded; only the final result is rounded to cents
// (half-up) so rounding error does not compound across lines.
func ComputeDiscount(promo models.Promotion, items []models.OrderLineItem) decimal.Decimal {
	switch promo.Scope {
	case enums.DiscountScopeLineItem:
		return perLineDiscount(promo, items).Round(2)
	default:
		return wholeSubtotalDiscount(promo, items).Round(2)
	}
}

// wholeSubtotalDiscount evaluates the promotion against the pre-discount
// line-item subtotal. A category-limited promotion contributes zero unless at
// least one active line matches the limit.
func wholeSubtotalDiscount(promo models.Promotion, items []models.OrderLineItem) decimal.Decimal {
	if len(promo.CategoryLimit) > 0 && !anyLineMatchesCategory(promo, items) {
		return decimal.Zero
	}

	subtotal := Subtotal(items)
	return discountAgainst(promo, subtotal)
}

// perLineDiscount sums per-line discounts over lines that meet the
// promotion's minimum quantity, each line filtered by category individually.
func perLineDiscount(promo models.Promotion, items []models.OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !item.Active() {
			continue
		}
		if item.Quantity < promo.MinLineQuantity {
			continue
		}
		if len(promo.CategoryLimit) > 0 && !categoryAllowed(promo, item.Category) {
			continue
		}
		total = total.Add(discountAgainst(promo, item.LineTotal()))
	}
	return total
}

func discountAgainst(promo models.Promotion, base decimal.Decimal) decimal.Decimal {
	if promo.DiscountKind == enums.DiscountKindFixed {
		return promo.Amount
	}
	return base.Mul(promo.Amount).Div(hundred)
}

// Subtotal sums price times quantity over active lines, unrounded.
func Subtotal(items []models.OrderLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if !item.Active() {
			continue
		}
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func anyLineMatchesCategory(promo models.Promotion, items []models.OrderLineItem) bool {
	for _, item := range items {
		if item.Active() && categoryAllowed(promo, item.Category) {
			return true
		}
	}
	return false
}

func categoryAllowed(promo models.Promotion, category string) bool {
	for _, allowed := range promo.CategoryLimit {
		if allowed == category {
			return true
		}
	}
	return false
}
