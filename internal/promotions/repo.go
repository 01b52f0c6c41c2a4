package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
)

// Repository defines persistence operations for the promotion catalog and
// redemption history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveForLocation(ctx context.Context, locationID uuid.UUID, now time.Time) ([]models.Promotion, error)
	FindByCode(ctx context.Context, code string) (*models.Promotion, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	ListRedeemedByUser(ctx context.Context, userID uuid.UUID) ([]models.PromotionApplication, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a promotions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListActiveForLocation returns the promotions currently offered at the
// location: non-deleted, visible, inside their active window. Catalog order is
// stable (creation order) so reconciliation stays deterministic.
func (r *repository) ListActiveForLocation(ctx context.Context, locationID uuid.UUID, now time.Time) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := r.db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Where("deleted_at IS NULL").
		Where("visible = ?", true).
		Where("active_from IS NULL OR active_from <= ?", now).
		Where("active_until IS NULL OR active_until >= ?", now).
		Order("created_at ASC").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

// FindByCode resolves a redemption code against non-deleted promotions.
// Invisible promotions are still resolvable here: hidden codes are a
// legitimate manual-redemption channel.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Where("deleted_at IS NULL").
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// ListRedeemedByUser returns the user's consumed promotion applications:
// applied, non-removed rows on orders that count toward redemption (not open,
// cancelled, or closed).
func (r *repository) ListRedeemedByUser(ctx context.Context, userID uuid.UUID) ([]models.PromotionApplication, error) {
	var apps []models.PromotionApplication
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = promotion_applications.order_id").
		Where("orders.user_id = ?", userID).
		Where("orders.status NOT IN ?", []string{"open", "cancelled", "closed"}).
		Where("promotion_applications.applied = ?", true).
		Where("promotion_applications.removed = ?", false).
		Order("promotion_applications.created_at ASC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}
