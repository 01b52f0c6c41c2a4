package coupons

import (
	"github.com/greenmile-app/greenmile-backend/internal/promotions"
	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
)

// ValidateRedemption checks the preconditions for manually redeeming a
// promotion onto an order. Each violation maps to its own sentinel so the
// caller can surface a distinct business error. No mutation happens here.
func ValidateRedemption(order *models.Order, promo *models.Promotion, history []models.PromotionApplication) error {
	if promo == nil || promo.LocationID != order.LocationID {
		return promotions.ErrPromotionNotFound
	}
	if promo.AutoApply {
		return promotions.ErrPromotionNotRedeemable
	}
	if !promo.Stackable {
		for _, app := range order.Promotions {
			if app.Applied && !app.Removed && !app.AutoApplied {
				return promotions.ErrPromotionAlreadyStacked
			}
		}
	}
	if promo.OneTimeUse {
		for _, app := range history {
			if app.PromotionID == promo.ID {
				return promotions.ErrPromotionAlreadyRedeemed
			}
		}
	}
	if !promo.ValidFor(order.FulfillmentMethod) {
		return promotions.ErrPromotionNotValidForFulfillment
	}
	return nil
}

// Redeem attaches the promotion to the order's application set. An existing
// record for the pair is revived instead of duplicated; otherwise a fresh
// manual application is appended. Returns the resulting application.
// Callers run ValidateRedemption first.
func Redeem(order *models.Order, promo *models.Promotion) *models.PromotionApplication {
	for i := range order.Promotions {
		app := &order.Promotions[i]
		if app.PromotionID != promo.ID {
			continue
		}
		app.Applied = true
		app.Removed = false
		app.Promotion = promo
		return app
	}
	order.Promotions = append(order.Promotions, models.PromotionApplication{
		OrderID:     order.ID,
		PromotionID: promo.ID,
		Applied:     true,
		AutoApplied: false,
		Promotion:   promo,
	})
	return &order.Promotions[len(order.Promotions)-1]
}
