package enums

import "fmt"

// DiscountScope determines what portion of the cart a promotion discounts.
type DiscountScope string

const (
	// DiscountScopeOrder applies against the whole line-item subtotal.
	DiscountScopeOrder DiscountScope = "order"
	// DiscountScopeLineItem applies per line item meeting the promotion's
	// minimum quantity.
	DiscountScopeLineItem DiscountScope = "line_item"
)

var validDiscountScopes = []DiscountScope{
	DiscountScopeOrder,
	DiscountScopeLineItem,
}

// String implements fmt.Stringer.
func (d DiscountScope) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountScope.
func (d DiscountScope) IsValid() bool {
	for _, candidate := range validDiscountScopes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountScope converts raw input into a DiscountScope.
func ParseDiscountScope(value string) (DiscountScope, error) {
	for _, candidate := range validDiscountScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount scope %q", value)
}
