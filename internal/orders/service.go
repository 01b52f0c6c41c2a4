package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenmile-app/greenmile-backend/internal/coupons"
	"github.com/greenmile-app/greenmile-backend/internal/pricing"
	"github.com/greenmile-app/greenmile-backend/internal/promotions"
	"github.com/greenmile-app/greenmile-backend/pkg/config"
	"github.com/greenmile-app/greenmile-backend/pkg/db"
	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
	pkgerrors "github.com/greenmile-app/greenmile-backend/pkg/errors"
	"github.com/greenmile-app/greenmile-backend/pkg/logger"
	"github.com/greenmile-app/greenmile-backend/pkg/metrics"
)

const openCartUniqueConstraint = "uq_orders_open_per_user"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type locker interface {
	Lock(ctx context.Context, orderID uuid.UUID) (*OrderLock, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	catalog promotions.Catalog
	history promotions.History
	engine  *pricing.Engine
	locks   locker
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
	cfg     config.PricingConfig
	now     func() time.Time
}

// NewService builds the order service over its collaborators. Metrics and
// logger are optional; everything else is required.
func NewService(repo Repository, tx txRunner, catalog promotions.Catalog, history promotions.History, engine *pricing.Engine, locks locker, met *metrics.PricingMetrics, logg *logger.Logger, cfg config.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("promotion catalog required")
	}
	if history == nil {
		return nil, fmt.Errorf("promotion history required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if locks == nil {
		return nil, fmt.Errorf("order locker required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &service{
		repo:    repo,
		tx:      tx,
		catalog: catalog,
		history: history,
		engine:  engine,
		locks:   locks,
		metrics: met,
		logg:    logg,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// GetCart returns the user's open order without recomputing it.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	order, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrNoOpenOrder, "no open order")
		}
		return nil, err
	}
	return order, nil
}

// AddLineItem adds (or merges) a product line onto the user's cart, creating
// the cart on first add. Adding for a different location relocates an empty
// cart and conflicts on a non-empty one.
func (s *service) AddLineItem(ctx context.Context, userID uuid.UUID, input AddLineItemInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.LocationID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location and product ids required")
	}
	if input.ProductName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.Quantity > s.cfg.MaxLineQuantity {
		return nil, mapBusinessError(ErrQuantityLimitExceeded)
	}

	return s.run(ctx, "add_line_item", func() (*models.Order, error) {
		order, err := s.openOrderForLocation(ctx, userID, input.LocationID)
		if err != nil {
			return nil, err
		}
		return s.mutateOrder(ctx, order, func(order *models.Order, _ []models.PromotionApplication) error {
			return addLine(order, input, s.cfg.MaxLineQuantity)
		})
	})
}

// RemoveLineItem soft-removes a cart line by zeroing its quantity.
func (s *service) RemoveLineItem(ctx context.Context, userID, lineItemID uuid.UUID) (*models.Order, error) {
	if lineItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}
	return s.mutateOpenOrder(ctx, "remove_line_item", userID, func(order *models.Order, _ []models.PromotionApplication) error {
		line := findLine(order, lineItemID)
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		line.Quantity = 0
		return nil
	})
}

// SetQuantity changes a cart line's quantity within the per-product cap.
func (s *service) SetQuantity(ctx context.Context, userID, lineItemID uuid.UUID, quantity int) (*models.Order, error) {
	if lineItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if quantity > s.cfg.MaxLineQuantity {
		return nil, mapBusinessError(ErrQuantityLimitExceeded)
	}
	return s.mutateOpenOrder(ctx, "set_quantity", userID, func(order *models.Order, _ []models.PromotionApplication) error {
		line := findLine(order, lineItemID)
		if line == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		line.Quantity = quantity
		return nil
	})
}

// SetFulfillmentMethod toggles pickup/delivery, re-evaluating promotion
// eligibility and the delivery fee.
func (s *service) SetFulfillmentMethod(ctx context.Context, userID uuid.UUID, method enums.FulfillmentMethod) (*models.Order, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment method")
	}
	return s.mutateOpenOrder(ctx, "set_fulfillment_method", userID, func(order *models.Order, _ []models.PromotionApplication) error {
		order.FulfillmentMethod = method
		return nil
	})
}

// AddCoupon manually redeems a promotion code onto the user's cart.
func (s *service) AddCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Order, error) {
	if code == "" {
		return nil, mapBusinessError(promotions.ErrPromotionNotFound)
	}
	return s.mutateOpenOrder(ctx, "add_coupon", userID, func(order *models.Order, history []models.PromotionApplication) error {
		promo, err := s.catalog.FindActiveByCode(ctx, code)
		if err != nil {
			return err
		}
		if err := coupons.ValidateRedemption(order, promo, history); err != nil {
			return err
		}
		coupons.Redeem(order, promo)
		return nil
	})
}

// RemoveCoupon soft-removes a manually redeemed promotion from the cart.
func (s *service) RemoveCoupon(ctx context.Context, userID, promotionID uuid.UUID) (*models.Order, error) {
	if promotionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion id required")
	}
	return s.mutateOpenOrder(ctx, "remove_coupon", userID, func(order *models.Order, _ []models.PromotionApplication) error {
		for i := range order.Promotions {
			app := &order.Promotions[i]
			if app.PromotionID != promotionID || app.Removed {
				continue
			}
			if app.AutoApplied {
				return pkgerrors.New(pkgerrors.CodeValidation, "auto-applied promotions cannot be removed manually")
			}
			app.Applied = false
			app.Removed = true
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "promotion not applied to order")
	})
}

// Submit runs a final recompute and moves the cart to submitted, consuming
// applied one-time-use promotions into the user's redemption history.
func (s *service) Submit(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	return s.mutateOpenOrder(ctx, "submit", userID, func(order *models.Order, _ []models.PromotionApplication) error {
		if !hasActiveLines(order) {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot submit an empty order")
		}
		now := s.now()
		order.Status = enums.OrderStatusSubmitted
		order.SubmittedAt = &now
		return nil
	})
}

// Cancel voids the user's open order. Cancelled orders never count toward
// one-time-use redemption history.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	return s.mutateOpenOrder(ctx, "cancel", userID, func(order *models.Order, _ []models.PromotionApplication) error {
		now := s.now()
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		return nil
	})
}

// mutateOpenOrder runs a mutation against the user's existing open order
// through the full serialized recompute pipeline.
func (s *service) mutateOpenOrder(ctx context.Context, operation string, userID uuid.UUID, mutate mutateFn) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.run(ctx, operation, func() (*models.Order, error) {
		order, err := s.repo.FindOpenByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoOpenOrder
			}
			return nil, err
		}
		return s.mutateOrder(ctx, order, mutate)
	})
}

// run wraps one pipeline execution with metrics, a single retry on an
// optimistic version conflict, and business-error mapping.
func (s *service) run(ctx context.Context, operation string, attempt func() (*models.Order, error)) (*models.Order, error) {
	start := time.Now()
	order, err := attempt()
	if errors.Is(err, errVersionConflict) {
		s.metrics.IncVersionConflict()
		order, err = attempt()
	}
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		if s.logg != nil && pkgerrors.As(err) == nil && !isBusinessError(err) {
			s.logg.Error(ctx, "order "+operation+" failed", err)
		}
		return nil, mapBusinessError(err)
	}
	s.metrics.IncSuccess(operation)
	return order, nil
}

type mutateFn func(order *models.Order, history []models.PromotionApplication) error

// mutateOrder executes one serialized recompute pass: acquire the per-order
// lock, reload fresh state, snapshot catalog and history, apply the mutation,
// reconcile applications, compute totals, and persist atomically under the
// order's version guard.
func (s *service) mutateOrder(ctx context.Context, stale *models.Order, mutate mutateFn) (*models.Order, error) {
	lock, err := s.locks.Lock(ctx, stale.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := lock.Release(ctx); relErr != nil && s.logg != nil {
			s.logg.Error(ctx, "failed to release order lock", relErr)
		}
	}()

	order, err := s.repo.FindByID(ctx, stale.ID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer open")
	}

	now := s.now()
	catalog, err := s.catalog.ActiveForLocation(ctx, order.LocationID)
	if err != nil {
		return nil, err
	}
	history, err := s.history.RedeemedByUser(ctx, order.UserID)
	if err != nil {
		return nil, err
	}

	if mutate != nil {
		if err := mutate(order, history); err != nil {
			return nil, err
		}
	}

	apps, err := coupons.Reconcile(order, order.Promotions, catalog, history, now)
	if err != nil {
		return nil, err
	}
	order.Promotions = apps

	totals := s.engine.ComputeTotals(order)
	order.DiscountTotal = totals.DiscountTotal
	order.TaxBreakdown = totals.TaxBreakdown
	order.TaxTotal = totals.TaxTotal
	order.DeliveryFee = totals.DeliveryFee
	order.Total = totals.OrderTotal

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}
	order.Version++
	return order, nil
}

// persist writes the recomputed aggregate in one transaction. The order row
// update is version-guarded; losing the race rolls everything back.
func (s *service) persist(ctx context.Context, order *models.Order) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.UpdateGuarded(ctx, order.ID, order.Version, map[string]any{
			"fulfillment_method": order.FulfillmentMethod,
			"status":             order.Status,
			"tax_breakdown":      order.TaxBreakdown,
			"discount_total":     order.DiscountTotal,
			"tax_total":          order.TaxTotal,
			"delivery_fee":       order.DeliveryFee,
			"total":              order.Total,
			"submitted_at":       order.SubmittedAt,
			"cancelled_at":       order.CancelledAt,
			"closed_at":          order.ClosedAt,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return errVersionConflict
		}
		if err := repo.SaveLineItems(ctx, order.LineItems); err != nil {
			return err
		}
		return repo.SaveApplications(ctx, order.Promotions)
	})
}

// openOrderForLocation finds the user's open cart for the location, creating
// one on first add. An empty cart at another location is closed and replaced;
// a non-empty one conflicts.
func (s *service) openOrderForLocation(ctx context.Context, userID, locationID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.createOpenOrder(ctx, userID, locationID)
		}
		return nil, err
	}
	if order.LocationID == locationID {
		return order, nil
	}
	if hasActiveLines(order) {
		return nil, ErrCartLocationConflict
	}

	// abandon the empty cart in favor of the new location
	now := s.now()
	rows, err := s.repo.UpdateGuarded(ctx, order.ID, order.Version, map[string]any{
		"status":    enums.OrderStatusClosed,
		"closed_at": &now,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errVersionConflict
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "closed empty cart on location switch")
	}
	return s.createOpenOrder(ctx, userID, locationID)
}

func (s *service) createOpenOrder(ctx context.Context, userID, locationID uuid.UUID) (*models.Order, error) {
	order := &models.Order{
		UserID:            userID,
		LocationID:        locationID,
		FulfillmentMethod: enums.FulfillmentPickup,
		Status:            enums.OrderStatusOpen,
		Version:           1,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		// a concurrent request created the open cart first; re-run the pass
		if db.IsUniqueViolation(err, openCartUniqueConstraint) {
			return nil, errVersionConflict
		}
		return nil, err
	}
	return created, nil
}

// addLine merges the input into an existing line for the product or appends
// a fresh snapshot line, enforcing the per-product quantity cap.
func addLine(order *models.Order, input AddLineItemInput, maxQuantity int) error {
	for i := range order.LineItems {
		line := &order.LineItems[i]
		if line.ProductID != input.ProductID {
			continue
		}
		next := line.Quantity + input.Quantity
		if next > maxQuantity {
			return ErrQuantityLimitExceeded
		}
		line.Quantity = next
		return nil
	}
	order.LineItems = append(order.LineItems, models.OrderLineItem{
		OrderID:     order.ID,
		ProductID:   input.ProductID,
		ProductName: input.ProductName,
		Category:    input.Category,
		UnitPrice:   input.UnitPrice,
		Quantity:    input.Quantity,
	})
	return nil
}

func findLine(order *models.Order, lineItemID uuid.UUID) *models.OrderLineItem {
	for i := range order.LineItems {
		if order.LineItems[i].ID == lineItemID {
			return &order.LineItems[i]
		}
	}
	return nil
}

func hasActiveLines(order *models.Order) bool {
	for _, line := range order.LineItems {
		if line.Active() {
			return true
		}
	}
	return false
}

var businessSentinels = []error{
	promotions.ErrPromotionNotFound,
	promotions.ErrPromotionNotRedeemable,
	promotions.ErrPromotionAlreadyStacked,
	promotions.ErrPromotionAlreadyRedeemed,
	promotions.ErrPromotionNotValidForFulfillment,
	ErrQuantityLimitExceeded,
	ErrCartLocationConflict,
	ErrNoOpenOrder,
	ErrOrderBusy,
}

func isBusinessError(err error) bool {
	for _, sentinel := range businessSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// mapBusinessError surfaces the engine's sentinel errors as coded errors at
// the service boundary. Wrapping keeps errors.Is working against sentinels.
func mapBusinessError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promotions.ErrPromotionNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "promotion not found")
	case errors.Is(err, promotions.ErrPromotionNotRedeemable):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "promotion cannot be redeemed manually")
	case errors.Is(err, promotions.ErrPromotionAlreadyStacked):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a promotion is already applied to this order")
	case errors.Is(err, promotions.ErrPromotionAlreadyRedeemed):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "promotion already redeemed")
	case errors.Is(err, promotions.ErrPromotionNotValidForFulfillment):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "promotion not valid for the order's fulfillment method")
	case errors.Is(err, ErrQuantityLimitExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "line item quantity limit exceeded")
	case errors.Is(err, ErrCartLocationConflict):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart holds items from another location")
	case errors.Is(err, ErrNoOpenOrder):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no open order")
	case errors.Is(err, ErrOrderBusy):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order is busy, retry shortly")
	case errors.Is(err, errVersionConflict):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "order changed concurrently, retry")
	default:
		return err
	}
}
