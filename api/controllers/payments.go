package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/responses"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/validators"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/payments"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

type createIntentRequest struct {
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	AmountCents int       `json:"amount_cents" validate:"required,gt=0"`
}

// CreatePaymentIntent opens a gateway payment intent for a pending online
// order.
func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.CreateIntent(r.Context(), payload.OrderID, payload.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPaymentResponse(payment))
	}
}

type verifyPaymentRequest struct {
	GatewayIntentID  string `json:"gateway_intent_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// VerifyPayment checks the gateway signature and confirms the order on
// success.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Verify(r.Context(), payments.VerifyInput{
			GatewayIntentID:  payload.GatewayIntentID,
			GatewayPaymentID: payload.GatewayPaymentID,
			Signature:        payload.Signature,
			ActorID:          actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type refundRequest struct {
	AmountCents int    `json:"amount_cents,omitempty" validate:"omitempty,gt=0"`
	Reason      string `json:"reason" validate:"required,max=500"`
}

type refundResponse struct {
	Payment         paymentResponse `json:"payment"`
	Order           *orderResponse  `json:"order,omitempty"`
	GatewayRefundID string          `json:"gateway_refund_id"`
	AmountCents     int             `json:"amount_cents"`
	FullyRefunded   bool            `json:"fully_refunded"`
}

// RefundPayment issues a partial or full refund through the coordinator so
// the order state and notifications stay consistent.
func RefundPayment(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentID, err := paymentIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.ProcessRefund(r.Context(), payments.RefundInput{
			PaymentID:   paymentID,
			AmountCents: payload.AmountCents,
			Reason:      validators.SanitizeString(payload.Reason, 500),
			ActorID:     actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRefundResponse(outcome))
	}
}

func newRefundResponse(outcome *payments.RefundOutcome) refundResponse {
	if outcome == nil {
		return refundResponse{}
	}
	resp := refundResponse{
		Payment:         newPaymentResponse(outcome.Payment),
		GatewayRefundID: outcome.GatewayRefundID,
		AmountCents:     outcome.AmountCents,
		FullyRefunded:   outcome.FullyRefunded,
	}
	if outcome.Order != nil {
		order := newOrderResponse(outcome.Order)
		resp.Order = &order
	}
	return resp
}

func paymentIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "paymentID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id")
	}
	return id, nil
}
