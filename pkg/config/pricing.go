package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRate is one named tax component, with Rate expressed as a percentage
// (10.5 means 10.5%).
type TaxRate struct {
	Name string
	Rate decimal.Decimal
}

// TaxRates is the ordered list of tax components applied to the discounted
// subtotal. Parsed from "name:rate,name:rate" env values.
type TaxRates []TaxRate

// Decode implements envconfig.Decoder.
func (t *TaxRates) Decode(value string) error {
	parsed, err := parsePairs(value)
	if err != nil {
		return fmt.Errorf("tax rates: %w", err)
	}
	rates := make(TaxRates, 0, len(parsed))
	for _, pair := range parsed {
		if pair.amount.IsNegative() {
			return fmt.Errorf("tax rates: rate for %q cannot be negative", pair.key)
		}
		rates = append(rates, TaxRate{Name: pair.key, Rate: pair.amount})
	}
	*t = rates
	return nil
}

// FeeBracket maps a discounted-subtotal upper bound (inclusive) to a flat
// delivery fee.
type FeeBracket struct {
	UpperBound decimal.Decimal
	Fee        decimal.Decimal
}

// DeliveryFeeBrackets is an ascending bracket table keyed by discounted
// subtotal. Subtotals above the last bound pay no delivery fee. Parsed from
// "bound:fee,bound:fee" env values.
type DeliveryFeeBrackets []FeeBracket

// Decode implements envconfig.Decoder.
func (d *DeliveryFeeBrackets) Decode(value string) error {
	parsed, err := parsePairs(value)
	if err != nil {
		return fmt.Errorf("delivery fee brackets: %w", err)
	}
	brackets := make(DeliveryFeeBrackets, 0, len(parsed))
	for _, pair := range parsed {
		bound, err := decimal.NewFromString(pair.key)
		if err != nil {
			return fmt.Errorf("delivery fee brackets: invalid bound %q", pair.key)
		}
		brackets = append(brackets, FeeBracket{UpperBound: bound, Fee: pair.amount})
	}
	tmp := DeliveryFeeBrackets(brackets)
	if err := tmp.validate(); err != nil {
		return err
	}
	*d = tmp
	return nil
}

// FeeFor returns the delivery fee owed for the given discounted subtotal:
// the fee of the first bracket whose bound covers it, zero beyond the table.
func (d DeliveryFeeBrackets) FeeFor(discountedSubtotal decimal.Decimal) decimal.Decimal {
	for _, bracket := range d {
		if discountedSubtotal.LessThanOrEqual(bracket.UpperBound) {
			return bracket.Fee
		}
	}
	return decimal.Zero
}

func (d DeliveryFeeBrackets) validate() error {
	prev := decimal.NewFromInt(-1)
	for _, bracket := range d {
		if bracket.UpperBound.LessThanOrEqual(prev) {
			return fmt.Errorf("delivery fee brackets must have strictly ascending bounds")
		}
		if bracket.Fee.IsNegative() {
			return fmt.Errorf("delivery fee cannot be negative")
		}
		prev = bracket.UpperBound
	}
	return nil
}

type keyedAmount struct {
	key    string
	amount decimal.Decimal
}

func parsePairs(value string) ([]keyedAmount, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("value is empty")
	}
	var out []keyedAmount
	for _, entry := range strings.Split(trimmed, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("entry %q must be key:amount", entry)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, fmt.Errorf("entry %q has an empty key", entry)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("entry %q has an invalid amount", entry)
		}
		out = append(out, keyedAmount{key: key, amount: amount})
	}
	return out, nil
}
