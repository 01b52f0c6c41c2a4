package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/internal/pricing"
	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

// OrderView is the wire representation of the cart/order aggregate.
type OrderView struct {
	ID                uuid.UUID               `json:"id"`
	LocationID        uuid.UUID               `json:"location_id"`
	FulfillmentMethod enums.FulfillmentMethod `json:"fulfillment_method"`
	Status            enums.OrderStatus       `json:"status"`
	LineItems         []LineItemView          `json:"line_items"`
	Promotions        []AppliedPromotionView  `json:"promotions"`
	Subtotal          decimal.Decimal         `json:"subtotal"`
	DiscountTotal     decimal.Decimal         `json:"discount_total"`
	TaxBreakdown      []TaxComponentView      `json:"tax_breakdown"`
	TaxTotal          decimal.Decimal         `json:"tax_total"`
	DeliveryFee       decimal.Decimal         `json:"delivery_fee"`
	Total             decimal.Decimal         `json:"total"`
	SubmittedAt       *time.Time              `json:"submitted_at,omitempty"`
}

// LineItemView mirrors one active cart line.
type LineItemView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// AppliedPromotionView exposes a currently applied promotion.
type AppliedPromotionView struct {
	PromotionID uuid.UUID `json:"promotion_id"`
	Code        string    `json:"code,omitempty"`
	Name        string    `json:"name,omitempty"`
	AutoApplied bool      `json:"auto_applied"`
}

// TaxComponentView is one named tax line of the breakdown.
type TaxComponentView struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

func newOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:                order.ID,
		LocationID:        order.LocationID,
		FulfillmentMethod: order.FulfillmentMethod,
		Status:            order.Status,
		LineItems:         []LineItemView{},
		Promotions:        []AppliedPromotionView{},
		Subtotal:          pricing.Subtotal(order.LineItems).Round(2),
		DiscountTotal:     order.DiscountTotal,
		TaxBreakdown:      []TaxComponentView{},
		TaxTotal:          order.TaxTotal,
		DeliveryFee:       order.DeliveryFee,
		Total:             order.Total,
		SubmittedAt:       order.SubmittedAt,
	}

	for _, line := range order.LineItems {
		if !line.Active() {
			continue
		}
		view.LineItems = append(view.LineItems, LineItemView{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Category:    line.Category,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal().Round(2),
		})
	}

	for _, app := range order.Promotions {
		if !app.Applied || app.Removed {
			continue
		}
		applied := AppliedPromotionView{
			PromotionID: app.PromotionID,
			AutoApplied: app.AutoApplied,
		}
		if app.Promotion != nil {
			applied.Code = app.Promotion.Code
			applied.Name = app.Promotion.Name
		}
		view.Promotions = append(view.Promotions, applied)
	}

	for _, component := range order.TaxBreakdown {
		view.TaxBreakdown = append(view.TaxBreakdown, TaxComponentView{
			Name:   component.Name,
			Rate:   component.Rate,
			Amount: component.Amount,
		})
	}

	return view
}
