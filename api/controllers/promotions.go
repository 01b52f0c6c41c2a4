package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/api/responses"
	"github.com/greenmile-app/greenmile-backend/internal/promotions"
	"github.com/greenmile-app/greenmile-backend/pkg/db/models"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
	"github.com/greenmile-app/greenmile-backend/pkg/logger"
)

// PromotionView is the public shape of an advertised promotion. Hidden codes
// stay out of listings; they can still be redeemed by code.
type PromotionView struct {
	ID               uuid.UUID           `json:"id"`
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	DiscountKind     enums.DiscountKind  `json:"discount_kind"`
	Amount           decimal.Decimal     `json:"amount"`
	Scope            enums.DiscountScope `json:"scope"`
	AutoApply        bool                `json:"auto_apply"`
	Stackable        bool                `json:"stackable"`
	ValidForPickup   bool                `json:"valid_for_pickup"`
	ValidForDelivery bool                `json:"valid_for_delivery"`
	VoidsDeliveryFee bool                `json:"voids_delivery_fee"`
	ActiveUntil      *time.Time          `json:"active_until,omitempty"`
}

func newPromotionView(promo models.Promotion) PromotionView {
	return PromotionView{
		ID:               promo.ID,
		Code:             promo.Code,
		Name:             promo.Name,
		DiscountKind:     promo.DiscountKind,
		Amount:           promo.Amount,
		Scope:            promo.Scope,
		AutoApply:        promo.AutoApply,
		Stackable:        promo.Stackable,
		ValidForPickup:   promo.ValidForPickup,
		ValidForDelivery: promo.ValidForDelivery,
		VoidsDeliveryFee: promo.VoidsDeliveryFee,
		ActiveUntil:      promo.ActiveUntil,
	}
}

// PromotionsForLocation lists the visible active promotions at a location.
func PromotionsForLocation(catalog promotions.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := pathID(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promos, err := catalog.ActiveForLocation(r.Context(), locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := []PromotionView{}
		for _, promo := range promos {
			if !promo.Visible {
				continue
			}
			views = append(views, newPromotionView(promo))
		}
		responses.WriteSuccess(w, views)
	}
}
