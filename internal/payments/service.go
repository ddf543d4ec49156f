package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orders"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orderstate"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/gateway"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/metrics"
)

// AmountEpsilonCents bounds how far a client-declared amount may drift from
// the server-computed order total before the intent is rejected.
const AmountEpsilonCents = 1

// gatewayCapturedStatus is the authoritative "money taken" state at the gateway.
const gatewayCapturedStatus = "captured"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gatewayClient interface {
	CreateIntent(ctx context.Context, params gateway.IntentParams) (*gateway.Intent, error)
	VerifySignature(intentID, paymentID, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*gateway.PaymentRecord, error)
	Refund(ctx context.Context, paymentID string, amountCents int64) (*gateway.RefundResult, error)
}

// VerifyInput is the signed callback delivered after the customer pays.
type VerifyInput struct {
	GatewayIntentID  string
	GatewayPaymentID string
	Signature        string
	ActorID          uuid.UUID
}

// RefundInput requests a partial or full refund of a completed payment.
// AmountCents of zero means "everything still outstanding".
type RefundInput struct {
	PaymentID   uuid.UUID
	AmountCents int
	Reason      string
	ActorID     uuid.UUID
}

// RefundOutcome reports the applied refund.
type RefundOutcome struct {
	Payment         *models.Payment
	Order           *models.Order
	GatewayRefundID string
	AmountCents     int
	FullyRefunded   bool
}

// Service reconciles gateway payment state with order state. It owns the
// Payment row and only ever mutates the Order through the state machine's
// transition contract.
type Service interface {
	CreateIntent(ctx context.Context, orderID uuid.UUID, amountCents int) (*models.Payment, error)
	Verify(ctx context.Context, input VerifyInput) (*models.Order, error)
	Refund(ctx context.Context, input RefundInput) (*RefundOutcome, error)
}

type service struct {
	tx       txRunner
	payments Repository
	orders   orders.Repository
	gateway  gatewayClient
	metrics  *metrics.OrderMetrics
}

// NewService builds the payment reconciler.
func NewService(tx txRunner, payments Repository, ordersRepo orders.Repository, gw gatewayClient, m *metrics.OrderMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	return &service{
		tx:       tx,
		payments: payments,
		orders:   ordersRepo,
		gateway:  gw,
		metrics:  m,
	}, nil
}

func (s *service) CreateIntent(ctx context.Context, orderID uuid.UUID, amountCents int) (*models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if !order.PaymentMethod.IsOnline() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order does not settle through the gateway")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, intent can only be opened while pending", order.Status))
	}
	if diff := amountCents - order.TotalCents; diff > AmountEpsilonCents || diff < -AmountEpsilonCents {
		return nil, pkgerrors.New(pkgerrors.CodeAmountMismatch,
			fmt.Sprintf("declared amount %d does not match order total %d", amountCents, order.TotalCents))
	}

	// An outstanding intent for the same order is returned as-is so callers
	// can safely retry.
	if existing, err := s.payments.FindPaymentByOrder(ctx, orderID); err == nil {
		if existing.Status == enums.PaymentStatusCreated || existing.Status == enums.PaymentStatusFailed {
			return existing, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("payment for this order is already %s", existing.Status))
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.IntentParams{
		AmountCents:    int64(order.TotalCents),
		Currency:       order.Currency,
		Receipt:        order.OrderNumber,
		IdempotencyKey: "order-" + order.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		OrderID:         order.ID,
		AmountCents:     order.TotalCents,
		Currency:        order.Currency,
		GatewayIntentID: intent.ID,
		Status:          enums.PaymentStatusCreated,
	}
	if _, err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment")
	}
	return payment, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*models.Order, error) {
	if input.GatewayIntentID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id, payment id, and signature are required")
	}

	payment, err := s.payments.FindPaymentByIntent(ctx, input.GatewayIntentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}

	// A replayed callback for an already-completed payment is a success.
	if payment.Status == enums.PaymentStatusCompleted {
		return s.findOrder(ctx, payment.OrderID)
	}
	if payment.Status == enums.PaymentStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is already refunded")
	}

	if !s.gateway.VerifySignature(input.GatewayIntentID, input.GatewayPaymentID, input.Signature) {
		// The payment is marked failed but the order stays untouched: a later
		// callback with a correct signature must still be able to succeed.
		reason := "callback signature mismatch"
		if err := s.payments.UpdatePayment(ctx, payment.ID, map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record signature failure")
		}
		s.metrics.IncVerification("signature_invalid")
		return nil, pkgerrors.New(pkgerrors.CodeSignatureInvalid, "payment callback signature is invalid")
	}

	// Never trust the callback alone: the gateway's record is authoritative.
	record, err := s.gateway.FetchPayment(ctx, input.GatewayPaymentID)
	if err != nil {
		s.metrics.IncVerification("gateway_error")
		return nil, err
	}
	if record.Status != gatewayCapturedStatus {
		reason := fmt.Sprintf("gateway reports payment %s", record.Status)
		if err := s.payments.UpdatePayment(ctx, payment.ID, map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record capture failure")
		}
		s.metrics.IncVerification("not_captured")
		return nil, pkgerrors.New(pkgerrors.CodeGateway, reason)
	}

	var confirmed *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		paymentsRepo := s.payments.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}

		entry, err := orderstate.Transition(order, orderstate.TransitionInput{
			To:      enums.OrderStatusConfirmed,
			ActorID: input.ActorID,
			Note:    "payment verified",
		})
		if err != nil {
			return err
		}

		if err := ordersRepo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":         order.Status,
			"payment_status": enums.OrderPaymentStatusPaid,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm order")
		}
		if err := ordersRepo.CreateStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
		}
		if err := paymentsRepo.UpdatePayment(ctx, payment.ID, map[string]any{
			"status":             enums.PaymentStatusCompleted,
			"gateway_payment_id": input.GatewayPaymentID,
			"failure_reason":     nil,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete payment")
		}

		order.PaymentStatus = enums.OrderPaymentStatusPaid
		confirmed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncVerification("verified")
	return confirmed, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*RefundOutcome, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	payment, err := s.payments.FindPayment(ctx, input.PaymentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
	}
	if payment.Status != enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("payment is %s, only completed payments can be refunded", payment.Status))
	}

	outstanding := payment.AmountCents - payment.RefundedCents
	amount := input.AmountCents
	if amount == 0 {
		amount = outstanding
	}
	if amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if amount > outstanding {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("refund amount %d exceeds outstanding %d", amount, outstanding))
	}
	if payment.GatewayPaymentID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment has no captured gateway payment")
	}

	result, err := s.gateway.Refund(ctx, *payment.GatewayPaymentID, int64(amount))
	if err != nil {
		s.metrics.IncRefund("gateway_error")
		return nil, err
	}

	fullyRefunded := payment.RefundedCents+amount >= payment.AmountCents
	outcome := &RefundOutcome{
		GatewayRefundID: result.ID,
		AmountCents:     amount,
		FullyRefunded:   fullyRefunded,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		paymentsRepo := s.payments.WithTx(tx)

		updates := map[string]any{"refunded_cents": payment.RefundedCents + amount}
		if fullyRefunded {
			updates["status"] = enums.PaymentStatusRefunded
		}
		if err := paymentsRepo.UpdatePayment(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply refund")
		}

		order, err := ordersRepo.FindOrder(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}

		// Only a full refund of a returned order flips the order status.
		if fullyRefunded && order.Status == enums.OrderStatusReturned {
			entry, err := orderstate.Transition(order, orderstate.TransitionInput{
				To:      enums.OrderStatusRefunded,
				ActorID: input.ActorID,
				Note:    input.Reason,
			})
			if err != nil {
				return err
			}
			if err := ordersRepo.UpdateOrder(ctx, order.ID, map[string]any{
				"status":         order.Status,
				"payment_status": enums.OrderPaymentStatusRefunded,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order refunded")
			}
			if err := ordersRepo.CreateStatusHistory(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
			}
			order.PaymentStatus = enums.OrderPaymentStatusRefunded
		}

		outcome.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	refreshed, err := s.payments.FindPayment(ctx, payment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload payment")
	}
	outcome.Payment = refreshed
	s.metrics.IncRefund("ok")
	return outcome, nil
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
