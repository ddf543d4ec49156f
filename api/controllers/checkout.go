package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/responses"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/validators"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/checkout"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/types"
)

type checkoutRequest struct {
	Lines           []checkoutLine `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod   string         `json:"payment_method" validate:"required,oneof=cod card upi"`
	ShippingAddress types.Address  `json:"shipping_address" validate:"required"`
}

type checkoutLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
	Variant   *string   `json:"variant,omitempty"`
}

type checkoutResponse struct {
	Orders []orderResponse             `json:"orders"`
	Failed []fulfillment.SellerFailure `json:"failed,omitempty"`
}

// Checkout submits the customer's cart and places one order per seller.
func Checkout(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		customerID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		req := checkout.CheckoutRequest{
			CustomerID:      customerID,
			PaymentMethod:   method,
			ShippingAddress: payload.ShippingAddress,
		}
		for _, line := range payload.Lines {
			req.Lines = append(req.Lines, checkout.CartLine{
				ProductID: line.ProductID,
				Qty:       line.Qty,
				Variant:   line.Variant,
			})
		}

		result, err := svc.PlaceOrder(r.Context(), req)
		if err != nil {
			// A partial batch still placed some orders; report both halves.
			if pkgerrors.HasCode(err, pkgerrors.CodePartialBatch) && result != nil {
				responses.WriteSuccessStatus(w, http.StatusMultiStatus, newCheckoutResponse(result))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

func newCheckoutResponse(result *fulfillment.OrderBatchResult) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	resp := checkoutResponse{
		Orders: make([]orderResponse, 0, len(result.Created)),
		Failed: result.Failed,
	}
	for _, order := range result.Created {
		resp.Orders = append(resp.Orders, newOrderResponse(order))
	}
	return resp
}
