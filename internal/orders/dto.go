package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddLineItemInput carries exactly the fields an item add is allowed to set.
// UnitPrice is the price snapshot taken by the caller at add time; later
// catalog price changes never retroactively reprice a cart line.
type AddLineItemInput struct {
	LocationID  uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Category    string
	UnitPrice   decimal.Decimal
	Quantity    int
}
