package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

// Promotion is an immutable-per-version discount rule offered at a location.
// Code is unique among non-deleted promotions (partial index); a deleted
// promotion keeps its historical application records but is excluded from
// automatic re-application.
type Promotion struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LocationID       uuid.UUID           `gorm:"column:location_id;type:uuid;not null"`
	Code             string              `gorm:"column:code;not null"`
	Name             string              `gorm:"column:name;not null"`
	DiscountKind     enums.DiscountKind  `gorm:"column:discount_kind;type:discount_kind;not null"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Scope            enums.DiscountScope `gorm:"column:scope;type:discount_scope;not null;default:'order'"`
	MinLineQuantity  int                 `gorm:"column:min_line_quantity;not null;default:0"`
	CategoryLimit    pq.StringArray      `gorm:"column:category_limit;type:text[]"`
	AutoApply        bool                `gorm:"column:auto_apply;not null;default:false"`
	Stackable        bool                `gorm:"column:stackable;not null;default:false"`
	OneTimeUse       bool                `gorm:"column:one_time_use;not null;default:false"`
	ValidForPickup   bool                `gorm:"column:valid_for_pickup;not null;default:true"`
	ValidForDelivery bool                `gorm:"column:valid_for_delivery;not null;default:true"`
	VoidsDeliveryFee bool                `gorm:"column:voids_delivery_fee;not null;default:false"`
	ActiveFrom       *time.Time          `gorm:"column:active_from"`
	ActiveUntil      *time.Time          `gorm:"column:active_until"`
	Visible          bool                `gorm:"column:visible;not null;default:true"`
	DeletedAt        *time.Time          `gorm:"column:deleted_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ValidFor reports whether the promotion may apply under the given
// fulfillment method.
func (p Promotion) ValidFor(method enums.FulfillmentMethod) bool {
	switch method {
	case enums.FulfillmentPickup:
		return p.ValidForPickup
	case enums.FulfillmentDelivery:
		return p.ValidForDelivery
	default:
		return false
	}
}

// ActiveAt reports whether the promotion's date window covers the instant.
func (p Promotion) ActiveAt(now time.Time) bool {
	if p.DeletedAt != nil {
		return false
	}
	if p.ActiveFrom != nil && now.Before(*p.ActiveFrom) {
		return false
	}
	if p.ActiveUntil != nil && now.After(*p.ActiveUntil) {
		return false
	}
	return true
}
