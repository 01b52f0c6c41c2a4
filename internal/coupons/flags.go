package coupons

import (
	"github.com/google/uuid"

	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
)

// ApplyFlags resolves the final applied flag on each candidate application.
// Pure; evaluation order matters: candidates must arrive as retained existing
// applications in creation order followed by newly discovered catalog
// promotions in catalog order, so that first-applied-wins is deterministic.
//
// A candidate ends up not applied when any of the following holds:
//   - the application is removed;
//   - the promotion is one-time-use and the user's redemption history already
//     contains it;
//   - the promotion is not valid for the order's fulfillment method;
//   - the promotion is neither auto-apply nor stackable and an earlier
//     manually-entered candidate is already applied.
func ApplyFlags(candidates []models.PromotionApplication, order *models.Order, history []models.PromotionApplication) []models.PromotionApplication {
	redeemed := redeemedSet(history)

	out := make([]models.PromotionApplication, len(candidates))
	copy(out, candidates)

	manualApplied := false
	for i := range out {
		app := &out[i]
		app.Applied = eligible(app, order, redeemed, manualApplied)
		if app.Applied && !app.AutoApplied {
			manualApplied = true
		}
	}
	return out
}

func eligible(app *models.PromotionApplication, order *models.Order, redeemed map[uuid.UUID]struct{}, manualApplied bool) bool {
	if app.Removed {
		return false
	}
	promo := app.Promotion
	if promo == nil {
		return false
	}
	if promo.OneTimeUse {
		if _, ok := redeemed[promo.ID]; ok {
			return false
		}
	}
	if !promo.ValidFor(order.FulfillmentMethod) {
		return false
	}
	if !promo.AutoApply && !promo.Stackable && manualApplied {
		return false
	}
	return true
}

func redeemedSet(history []models.PromotionApplication) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(history))
	for _, app := range history {
		set[app.PromotionID] = struct{}{}
	}
	return set
}
