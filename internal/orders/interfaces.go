package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
)

// Repository defines persistence operations for the order aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	UpdateGuarded(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
	SaveLineItems(ctx context.Context, items []models.OrderLineItem) error
	SaveApplications(ctx context.Context, apps []models.PromotionApplication) error
}

// Service exposes the cart and order mutation surface. Every mutation ends
// with a full pricing recompute pass before returning the fresh aggregate.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	AddLineItem(ctx context.Context, userID uuid.UUID, input AddLineItemInput) (*models.Order, error)
	RemoveLineItem(ctx context.Context, userID, lineItemID uuid.UUID) (*models.Order, error)
	SetQuantity(ctx context.Context, userID, lineItemID uuid.UUID, quantity int) (*models.Order, error)
	SetFulfillmentMethod(ctx context.Context, userID uuid.UUID, method enums.FulfillmentMethod) (*models.Order, error)
	AddCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Order, error)
	RemoveCoupon(ctx context.Context, userID, promotionID uuid.UUID) (*models.Order, error)
	Submit(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*models.Order, error)
}
