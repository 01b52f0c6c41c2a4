package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/pkg/enums"
	"github.com/greenmile-app/greenmile-backend/pkg/types"
)

// Order is the cart/order aggregate. A user has at most one order in the open
// status at a time; totals are recomputed by the pricing pipeline and written
// back in one transaction guarded by Version.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	LocationID        uuid.UUID               `gorm:"column:location_id;type:uuid;not null"`
	FulfillmentMethod enums.FulfillmentMethod `gorm:"column:fulfillment_method;type:fulfillment_method;not null;default:'pickup'"`
	Status            enums.OrderStatus       `gorm:"column:status;type:order_status;not null;default:'open'"`
	Version           int64                   `gorm:"column:version;not null;default:1"`
	TaxBreakdown      types.TaxBreakdown      `gorm:"column:tax_breakdown;type:jsonb;serializer:json"`
	DiscountTotal     decimal.Decimal         `gorm:"column:discount_total;type:numeric(12,2);not null;default:0"`
	TaxTotal          decimal.Decimal         `gorm:"column:tax_total;type:numeric(12,2);not null;default:0"`
	DeliveryFee       decimal.Decimal         `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Total             decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	LineItems         []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Promotions        []PromotionApplication  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	SubmittedAt       *time.Time              `gorm:"column:submitted_at"`
	CancelledAt       *time.Time              `gorm:"column:cancelled_at"`
	ClosedAt          *time.Time              `gorm:"column:closed_at"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
