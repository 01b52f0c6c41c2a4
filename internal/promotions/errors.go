package promotions

import "errors"

var (
	// ErrPromotionNotFound is returned when a redemption code does not resolve
	// to an active, non-deleted promotion.
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrPromotionAlreadyStacked indicates a non-stackable manual promotion is
	// already applied on the order.
	ErrPromotionAlreadyStacked = errors.New("promotion already stacked")
	// ErrPromotionAlreadyRedeemed indicates a one-time-use promotion was found
	// in the user's redemption history.
	ErrPromotionAlreadyRedeemed = errors.New("promotion already redeemed")
	// ErrPromotionNotValidForFulfillment indicates a pickup/delivery mismatch.
	ErrPromotionNotValidForFulfillment = errors.New("promotion not valid for fulfillment method")
	// ErrPromotionNotRedeemable is returned when attempting to manually redeem
	// an auto-apply promotion.
	ErrPromotionNotRedeemable = errors.New("promotion cannot be redeemed manually")
)
