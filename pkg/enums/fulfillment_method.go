package enums

import "fmt"

// FulfillmentMethod describes how an order leaves the store.
type FulfillmentMethod string

const (
	FulfillmentPickup   FulfillmentMethod = "pickup"
	FulfillmentDelivery FulfillmentMethod = "delivery"
)

var validFulfillmentMethods = []FulfillmentMethod{
	FulfillmentPickup,
	FulfillmentDelivery,
}

// String implements fmt.Stringer.
func (f FulfillmentMethod) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentMethod.
func (f FulfillmentMethod) IsValid() bool {
	for _, candidate := range validFulfillmentMethods {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentMethod converts raw input into a FulfillmentMethod.
func ParseFulfillmentMethod(value string) (FulfillmentMethod, error) {
	for _, candidate := range validFulfillmentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment method %q", value)
}
