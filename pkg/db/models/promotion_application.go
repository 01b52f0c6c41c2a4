package models

import (
	"time"

	"github.com/google/uuid"
)

// PromotionApplication joins one order to one promotion. Applied means the
// promotion currently contributes to totals; Removed soft-deletes the record,
// excluding it from totals while keeping usage history queryable. At most one
// non-removed row exists per (order, promotion) pair, enforced by a partial
// unique index.
type PromotionApplication struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	PromotionID uuid.UUID  `gorm:"column:promotion_id;type:uuid;not null"`
	Applied     bool       `gorm:"column:applied;not null;default:false"`
	Removed     bool       `gorm:"column:removed;not null;default:false"`
	AutoApplied bool       `gorm:"column:auto_applied;not null;default:false"`
	Promotion   *Promotion `gorm:"foreignKey:PromotionID"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
