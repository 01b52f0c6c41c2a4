package pricing

import (
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

func TestComputeDiscountPercentageWholeSubtotal(t *testing.T) {
	t.Parallel()

	promo := models.Promotion{
		DiscountKind: enums.DiscountKindPercentage,
		Scope:        enums.DiscountScopeOrder,
		Amount:       dec(t, "10"),
	}
	items := []models.OrderLineItem{
		line("flower", "60.00", 1),
		line("edibles", "20.00", 2),
	}

	got := ComputeDiscount(promo, items)
	if !got.Equal(dec(t, "10.00")) {
		t.Fatalf("expected 10.00, got %s", got)
	}
}

func TestComputeDiscountFixedWholeSubtotal(t *testing.T) {
	t.Parallel()

	promo := models.Promotion{
		DiscountKind: enums.DiscountKindFixed,
		Scope:        enums.DiscountScopeOrder,
		Amount:       dec(t, "15.00"),
	}
	items := []models.OrderLineItem{line("flower", "42.37", 1)}

	if got := ComputeDiscount(promo, items); !got.Equal(dec(t, "15.00")) {
		t.Fatalf("expected 15.00, got %s", got)
	}
}

func TestComputeDiscountIgnoresRemovedLines(t *testing.T) {
	t.Parallel()

	promo := models.Promotion{
		DiscountKind: enums.DiscountKindPercentage,
		Scope:        enums.DiscountScopeOrder,
		Amount:       dec(t, "50"),
	}
	items := []models.OrderLineItem{
		line("flower", "40.00", 1),
		line("flower", "99.99", 0), // soft-removed
	}

	if got := ComputeDiscount(promo, items); !got.Equal(dec(t, "20.00")) {
		t.Fatalf("expected 20.00, got %s", got)
	}
}

func TestComputeDiscountPerLineMinimumQuantity(t *testing.T) {
	t.Parallel()

	promo := models.Promotion{
		DiscountKind:    enums.DiscountKindPercentage,
		Scope:           enums.DiscountScopeLineItem,
		Amount:          dec(t, "20"),
		MinLineQuantity: 3,
	}
	items := []models.OrderLineItem{
		line("flower", "10.00", 3), // qualifies: 30.00 * 20% = 6.00
		line("edibles", "10.00", 2), // below minimum
	}

	if got := ComputeDiscount(promo, items); !got.Equal(dec(t, "6.00")) {
		t.Fatalf("expected 6.00, got %s", got)
	}
}

func TestComputeDiscountCategoryLimitWholeSubtotal(t *testing.T) {
	t.Parallel()

	promo := models.Promotion{
		DiscountKind:  enums.DiscountKindPercentage,
		Scope:         enums.DiscountScopeOrder,
		Amount:        dec(t, "10"),
		CategoryLimit: pq.StringArray{"flower"},
	}

	// no line intersects the category set: zero contribution
	miss := []models.OrderLineItem{line("edibles", "100.00", 1)}
	if got := ComputeDiscount(promo, miss); !got.IsZero() {
		t.Fatalf("expected zero for non-matching categories, got %s", got)
	}

	// one matching line unlocks the whole-subtotal discount
	hit := []models.OrderLineItem{
		line("flower", "40.00", 1),
		line("edibles", "60.00", 1),
	}
	if got := ComputeDiscount(promo, hit); !got.Equal(dec(t, "10.00")) {
		t.Fatalf("expected 10.00, got %s", got)
	}
}

func TestComputeDiscountCategoryLimitPerLine(t *testing.T) {
	t.Parallel()

	promo := models.Promotion{
		DiscountKind:    enums.DiscountKindPercentage,
		Scope:           enums.DiscountScopeLineItem,
		Amount:          dec(t, "10"),
		MinLineQuantity: 1,
		CategoryLimit:   pq.StringArray{"flower"},
	}
	items := []models.OrderLineItem{
		line("flower", "40.00", 1), // 4.00
		line("edibles", "60.00", 1), // filtered out
	}

	if got := ComputeDiscount(promo, items); !got.Equal(dec(t, "4.00")) {
		t.Fatalf("expected 4.00, got %s", got)
	}
}

func TestComputeDiscountRoundsHalfUpAtFinalStep(t *testing.T) {
	t.Parallel()

	// Three lines of 3.35 at 15% each contribute 0.5025; summed unrounded
	// (1.5075) then rounded once: 1.51. Rounding each line first would give
	// 1.50.
	promo := models.Promotion{
		DiscountKind:    enums.DiscountKindPercentage,
		Scope:           enums.DiscountScopeLineItem,
		Amount:          dec(t, "15"),
		MinLineQuantity: 1,
	}
	items := []models.OrderLineItem{
		line("flower", "3.35", 1),
		line("flower", "3.35", 1),
		line("flower", "3.35", 1),
	}

	if got := ComputeDiscount(promo, items); !got.Equal(dec(t, "1.51")) {
		t.Fatalf("expected 1.51, got %s", got)
	}
}

func line(category, price string, qty int) models.OrderLineItem {
	return models.OrderLineItem{
		Category:  category,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return d
}
