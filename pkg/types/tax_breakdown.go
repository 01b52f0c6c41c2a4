package types

import "github.com/shopspring/decimal"

// TaxComponent is one named line of an order's tax breakdown.
type TaxComponent struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// TaxBreakdown is the full set of tax components computed for an order. It is
// recomputed from the discounted subtotal on every pricing pass and stored as
// a jsonb snapshot; it is never user-editable.
type TaxBreakdown []TaxComponent

// Total sums the component amounts.
func (t TaxBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, component := range t {
		total = total.Add(component.Amount)
	}
	return total
}

// Equal reports whether two breakdowns carry the same components in the same
// order with equal rates and amounts.
func (t TaxBreakdown) Equal(other TaxBreakdown) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i].Name != other[i].Name {
			return false
		}
		if !t[i].Rate.Equal(other[i].Rate) || !t[i].Amount.Equal(other[i].Amount) {
			return false
		}
	}
	return true
}
