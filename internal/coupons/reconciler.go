package coupons

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
)

// Reconcile aligns an order's promotion applications with the location's
// current catalog snapshot and resolves their applied flags. Pure given its
// inputs and idempotent: re-running with identical inputs yields the
// identical application set.
//
// Existing applications are matched against the catalog by promotion id.
// Auto-applied entries whose promotion left the catalog are soft-removed;
// manually-redeemed entries survive a catalog miss only while their
// promotion is still active at the order's location. Catalog promotions
// flagged auto-apply that have no live application yet are created
// provisionally; manual-only promotions are never created here, they enter
// through redemption alone.
func Reconcile(order *models.Order, existing []models.PromotionApplication, catalog []models.Promotion, history []models.PromotionApplication, now time.Time) ([]models.PromotionApplication, error) {
	byID := make(map[uuid.UUID]*models.Promotion, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	candidates := make([]models.PromotionApplication, len(existing))
	copy(candidates, existing)

	live := make(map[uuid.UUID]struct{}, len(candidates))
	for i := range candidates {
		app := &candidates[i]
		if app.Removed {
			continue
		}
		live[app.PromotionID] = struct{}{}

		if promo, ok := byID[app.PromotionID]; ok {
			app.Promotion = promo
			app.Applied = true
			continue
		}
		if app.AutoApplied {
			app.Applied = false
			app.Removed = true
			continue
		}
		// Manual redemption of a promotion the catalog no longer lists,
		// typically a hidden code. It stays as long as the promotion itself
		// is still live at this location.
		if app.Promotion == nil || !app.Promotion.ActiveAt(now) || app.Promotion.LocationID != order.LocationID {
			app.Applied = false
			app.Removed = true
		}
	}

	for i := range catalog {
		promo := &catalog[i]
		if !promo.AutoApply {
			continue
		}
		if _, ok := live[promo.ID]; ok {
			continue
		}
		candidates = append(candidates, models.PromotionApplication{
			OrderID:     order.ID,
			PromotionID: promo.ID,
			Applied:     true,
			AutoApplied: true,
			Promotion:   promo,
		})
	}

	final := ApplyFlags(candidates, order, history)

	if err := checkNoDuplicates(final); err != nil {
		return nil, err
	}
	return final, nil
}

// checkNoDuplicates enforces the hard invariant that no two non-removed
// applications reference the same promotion. A violation is a programming
// error, never reachable from valid inputs.
func checkNoDuplicates(apps []models.PromotionApplication) error {
	seen := make(map[uuid.UUID]struct{}, len(apps))
	for _, app := range apps {
		if app.Removed {
			continue
		}
		if _, dup := seen[app.PromotionID]; dup {
			return fmt.Errorf("duplicate live application for promotion %s", app.PromotionID)
		}
		seen[app.PromotionID] = struct{}{}
	}
	return nil
}
