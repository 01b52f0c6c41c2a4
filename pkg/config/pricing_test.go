package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeliveryFeeBracketsDecode(t *testing.T) {
	t.Parallel()

	var brackets DeliveryFeeBrackets
	if err := brackets.Decode("74:15.00,99:12.00,149:10.00,199:5.00"); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(brackets) != 4 {
		t.Fatalf("expected 4 brackets, got %d", len(brackets))
	}

	tests := []struct {
		subtotal string
		fee      string
	}{
		{"0", "15.00"},
		{"74", "15.00"},
		{"74.50", "12.00"},
		{"90", "12.00"},
		{"99", "12.00"},
		{"100", "10.00"},
		{"149", "10.00"},
		{"150", "5.00"},
		{"199", "5.00"},
		{"200", "0"},
		{"350", "0"},
	}
	for _, tt := range tests {
		got := brackets.FeeFor(mustDecimal(t, tt.subtotal))
		if !got.Equal(mustDecimal(t, tt.fee)) {
			t.Fatalf("subtotal %s: expected fee %s, got %s", tt.subtotal, tt.fee, got)
		}
	}
}

func TestDeliveryFeeBracketsDecodeRejectsBadInput(t *testing.T) {
	t.Parallel()

	var brackets DeliveryFeeBrackets
	for _, value := range []string{"", "74", "74:-1", "abc:15", "99:12,74:15"} {
		if err := brackets.Decode(value); err == nil {
			t.Fatalf("expected decode of %q to fail", value)
		}
	}
}

func TestTaxRatesDecode(t *testing.T) {
	t.Parallel()

	var rates TaxRates
	if err := rates.Decode("state:10.5,municipal:1"); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
	if rates[1].Name != "municipal" || !rates[1].Rate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected second rate: %+v", rates[1])
	}

	if err := rates.Decode("state:-1"); err == nil {
		t.Fatal("expected negative rate to be rejected")
	}
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return d
}
