package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenmile-app/greenmile-backend/api/middleware"
	"github.com/greenmile-app/greenmile-backend/api/responses"
	"github.com/greenmile-app/greenmile-backend/api/validators"
	"github.com/greenmile-app/greenmile-backend/internal/orders"
	"github.com/greenmile-app/greenmile-backend/pkg/enums"
	pkgerrors "github.com/greenmile-app/greenmile-backend/pkg/errors"
	"github.com/greenmile-app/greenmile-backend/pkg/logger"
)

// AddLineItemRequest is the payload for adding a product to the cart.
type AddLineItemRequest struct {
	LocationID  uuid.UUID       `json:"location_id" validate:"required"`
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	Category    string          `json:"category" validate:"max=64"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
}

// SetQuantityRequest updates one cart line's quantity.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// SetFulfillmentRequest toggles the order's fulfillment method.
type SetFulfillmentRequest struct {
	FulfillmentMethod string `json:"fulfillment_method" validate:"required"`
}

// AddCouponRequest redeems a promotion code.
type AddCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// CartFetch returns the caller's open cart.
func CartFetch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartAddLineItem adds or merges a product line and reprices the cart.
func CartAddLineItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddLineItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddLineItem(r.Context(), userID, orders.AddLineItemInput{
			LocationID:  payload.LocationID,
			ProductID:   payload.ProductID,
			ProductName: validators.SanitizeString(payload.ProductName, 255),
			Category:    validators.SanitizeString(payload.Category, 64),
			UnitPrice:   payload.UnitPrice,
			Quantity:    payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartRemoveLineItem soft-removes a cart line and reprices the cart.
func CartRemoveLineItem(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineItemID, err := pathID(r, "lineItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RemoveLineItem(r.Context(), userID, lineItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartSetQuantity changes a line's quantity and reprices the cart.
func CartSetQuantity(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineItemID, err := pathID(r, "lineItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetQuantity(r.Context(), userID, lineItemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartSetFulfillment toggles pickup/delivery and reprices the cart.
func CartSetFulfillment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SetFulfillmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParseFulfillmentMethod(payload.FulfillmentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment method"))
			return
		}

		order, err := svc.SetFulfillmentMethod(r.Context(), userID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartAddCoupon redeems a promotion code onto the cart.
func CartAddCoupon(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddCoupon(r.Context(), userID, validators.SanitizeString(payload.Code, 64))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartRemoveCoupon soft-removes a redeemed promotion from the cart.
func CartRemoveCoupon(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		promotionID, err := pathID(r, "promotionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RemoveCoupon(r.Context(), userID, promotionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartSubmit moves the open cart to submitted after a final reprice.
func CartSubmit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// CartCancel voids the caller's open cart.
func CartCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

func requireUser(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	return userID, nil
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
