package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindOpenByUser loads the user's open cart with its lines and promotion
// applications in creation order; the application order feeds the
// first-applied-wins evaluation.
func (r *repository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_line_items.created_at ASC")
		}).
		Preload("Promotions", func(db *gorm.DB) *gorm.DB {
			return db.Order("promotion_applications.created_at ASC")
		}).
		Preload("Promotions.Promotion").
		Where("user_id = ?", userID).
		Where("status = ?", enums.OrderStatusOpen).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_line_items.created_at ASC")
		}).
		Preload("Promotions", func(db *gorm.DB) *gorm.DB {
			return db.Order("promotion_applications.created_at ASC")
		}).
		Preload("Promotions.Promotion").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateGuarded applies the updates only when the stored version still
// matches, bumping the version in the same statement. Returns the affected
// row count; zero means a concurrent writer won.
func (r *repository) UpdateGuarded(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	updates["version"] = expectedVersion + 1
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where("version = ?", expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// SaveLineItems upserts the cart lines, collecting per-line errors; callers
// run this inside the order transaction so any error rolls back the batch.
func (r *repository) SaveLineItems(ctx context.Context, items []models.OrderLineItem) error {
	var errs []error
	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
				errs = append(errs, fmt.Errorf("create line item for product %s: %w", item.ProductID, err))
			}
			continue
		}
		err := r.db.WithContext(ctx).
			Model(&models.OrderLineItem{}).
			Where("id = ?", item.ID).
			Update("quantity", item.Quantity).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("update line item %s: %w", item.ID, err))
		}
	}
	return multierr.Combine(errs...)
}

func (r *repository) SaveApplications(ctx context.Context, apps []models.PromotionApplication) error {
	var errs []error
	for i := range apps {
		app := &apps[i]
		if app.ID == uuid.Nil {
			record := models.PromotionApplication{
				OrderID:     app.OrderID,
				PromotionID: app.PromotionID,
				Applied:     app.Applied,
				Removed:     app.Removed,
				AutoApplied: app.AutoApplied,
			}
			if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
				errs = append(errs, fmt.Errorf("create application for promotion %s: %w", app.PromotionID, err))
				continue
			}
			app.ID = record.ID
			continue
		}
		err := r.db.WithContext(ctx).
			Model(&models.PromotionApplication{}).
			Where("id = ?", app.ID).
			Updates(map[string]any{
				"applied": app.Applied,
				"removed": app.Removed,
			}).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("update application %s: %w", app.ID, err))
		}
	}
	return multierr.Combine(errs...)
}
