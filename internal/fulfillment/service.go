package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/checkout"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/inventory"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/notify"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orders"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orderstate"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/payments"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/realtime"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/stats"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/metrics"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Dispatch(ctx context.Context, msgs ...notify.Message)
}

type broadcaster interface {
	Broadcast(ctx context.Context, event realtime.Event)
}

type refunder interface {
	Refund(ctx context.Context, input payments.RefundInput) (*payments.RefundOutcome, error)
}

// deliveryCodeKind namespaces delivery confirmation codes in redis.
const deliveryCodeKind = "delivery"

type deliveryCodes interface {
	Issue(ctx context.Context, kind, recipient string) (string, error)
	Check(ctx context.Context, kind, recipient, submitted string) error
	Outstanding(ctx context.Context, kind, recipient string) (bool, error)
}

// Service coordinates the order lifecycle end to end: checkout splitting,
// inventory reservation, status transitions, cancellation, returns, and
// refunds. Each seller order is placed in its own transaction so a failing
// seller never rolls back a sibling.
type Service interface {
	PlaceOrder(ctx context.Context, req checkout.CheckoutRequest) (*OrderBatchResult, error)
	AdvanceStatus(ctx context.Context, input AdvanceInput) (*models.Order, error)
	CancelOrder(ctx context.Context, input CancelInput) (*models.Order, error)
	RequestReturn(ctx context.Context, input ReturnInput) (*models.Order, error)
	ProcessRefund(ctx context.Context, input payments.RefundInput) (*payments.RefundOutcome, error)
}

type service struct {
	tx          txRunner
	splitter    *checkout.Splitter
	orders      orders.Repository
	stats       *stats.Recorder
	refunds     refunder
	notifier    notifier
	broadcaster broadcaster
	codes       deliveryCodes
	metrics     *metrics.OrderMetrics
	logger      *logger.Logger
	cfg         config.CheckoutConfig
}

// Params collects the coordinator's dependencies.
type Params struct {
	Tx          txRunner
	Splitter    *checkout.Splitter
	Orders      orders.Repository
	Stats       *stats.Recorder
	Refunds     refunder
	Notifier    notifier
	Broadcaster broadcaster
	Codes       deliveryCodes
	Metrics     *metrics.OrderMetrics
	Logger      *logger.Logger
	Checkout    config.CheckoutConfig
}

// NewService wires the fulfillment coordinator.
func NewService(params Params) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Splitter == nil {
		return nil, fmt.Errorf("splitter required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats recorder required")
	}
	if params.Refunds == nil {
		return nil, fmt.Errorf("refund service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Broadcaster == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          params.Tx,
		splitter:    params.Splitter,
		orders:      params.Orders,
		stats:       params.Stats,
		refunds:     params.Refunds,
		notifier:    params.Notifier,
		broadcaster: params.Broadcaster,
		codes:       params.Codes,
		metrics:     params.Metrics,
		logger:      params.Logger,
		cfg:         params.Checkout,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, req checkout.CheckoutRequest) (*OrderBatchResult, error) {
	now := time.Now().UTC()
	drafts, err := s.splitter.Split(ctx, now, req)
	if err != nil {
		return nil, err
	}

	result := &OrderBatchResult{}
	var lowStock []notify.Message
	for _, draft := range drafts {
		order, low, placeErr := s.placeSellerOrder(ctx, now, req, draft)
		if placeErr != nil {
			s.metrics.IncCheckoutOrder("failed")
			result.Failed = append(result.Failed, SellerFailure{
				SellerID: draft.SellerID,
				Reason:   failureReason(placeErr),
			})
			continue
		}
		s.metrics.IncCheckoutOrder("created")
		s.metrics.AddCheckoutValue(string(req.PaymentMethod), int64(order.TotalCents))
		result.Created = append(result.Created, order)
		lowStock = append(lowStock, low...)
	}

	for _, order := range result.Created {
		s.notifier.Dispatch(ctx,
			notify.Message{
				RecipientID: order.CustomerID,
				Kind:        enums.NotificationKindOrderPlaced,
				Title:       "Order placed",
				Body:        fmt.Sprintf("Order %s was placed for %s.", order.OrderNumber, formatCents(order.TotalCents, order.Currency)),
				OrderID:     &order.ID,
			},
			notify.Message{
				RecipientID: order.SellerID,
				Kind:        enums.NotificationKindOrderPlaced,
				Title:       "New order",
				Body:        fmt.Sprintf("You received order %s.", order.OrderNumber),
				OrderID:     &order.ID,
			},
		)
		s.broadcaster.Broadcast(ctx, realtime.Event{
			Kind:       realtime.KindOrderPlaced,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			SellerID:   order.SellerID,
			Status:     order.Status,
		})
	}
	if len(lowStock) > 0 {
		s.notifier.Dispatch(ctx, lowStock...)
	}

	if len(result.Created) == 0 {
		// The per-seller reasons ride the error so the response still names
		// every failed sub-order.
		return result, pkgerrors.New(pkgerrors.CodeInsufficientStock, "no seller order could be placed").
			WithDetails(result.Failed)
	}
	if len(result.Failed) > 0 {
		return result, pkgerrors.New(pkgerrors.CodePartialBatch,
			fmt.Sprintf("%d of %d seller orders failed", len(result.Failed), len(drafts)))
	}
	return result, nil
}

// placeSellerOrder reserves stock and persists one seller order atomically.
// The reservation and the order rows live in the same transaction: if any
// line cannot be reserved the whole seller order rolls back and stock for
// already-reserved sibling lines is returned by the rollback itself.
func (s *service) placeSellerOrder(ctx context.Context, now time.Time, req checkout.CheckoutRequest, draft checkout.SellerDraft) (*models.Order, []notify.Message, error) {
	var (
		placed   *models.Order
		lowStock []notify.Message
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		requests := make([]inventory.ReservationRequest, 0, len(draft.Lines))
		for _, line := range draft.Lines {
			requests = append(requests, inventory.ReservationRequest{ProductID: line.ProductID, Qty: line.Qty})
		}
		results, err := inventory.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		if failure, ok := inventory.FirstFailure(results); ok {
			s.metrics.IncReservationFailure()
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, failure.Reason)
		}

		estimated := draft.EstimatedDelivery
		order := &models.Order{
			ID:                uuid.New(),
			OrderNumber:       orders.NewOrderNumber(now),
			CustomerID:        req.CustomerID,
			SellerID:          draft.SellerID,
			Currency:          s.currency(),
			Status:            enums.OrderStatusPending,
			PaymentMethod:     req.PaymentMethod,
			PaymentStatus:     enums.OrderPaymentStatusPending,
			SubtotalCents:     draft.SubtotalCents,
			ShippingCents:     draft.ShippingCents,
			TaxCents:          draft.TaxCents,
			TotalCents:        draft.TotalCents,
			ShippingAddress:   &req.ShippingAddress,
			EstimatedDelivery: &estimated,
			CreatedAt:         now,
		}

		repo := s.orders.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
		}

		items := make([]models.OrderItem, 0, len(draft.Lines))
		for _, line := range draft.Lines {
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				OrderID:        order.ID,
				ProductID:      line.ProductID,
				Name:           line.Name,
				SKU:            line.SKU,
				ImageURL:       line.ImageURL,
				Variant:        line.Variant,
				UnitPriceCents: line.UnitPriceCents,
				Qty:            line.Qty,
				DeliveryDays:   line.DeliveryDays,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order items")
		}

		entry := &models.StatusHistoryEntry{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    enums.OrderStatusPending,
			ActorID:   req.CustomerID,
			CreatedAt: now,
		}
		if err := repo.CreateStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist status history")
		}

		order.Items = items
		placed = order
		lowStock = s.lowStockMessages(draft, results)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return placed, lowStock, nil
}

func (s *service) lowStockMessages(draft checkout.SellerDraft, results []inventory.ReservationResult) []notify.Message {
	names := make(map[uuid.UUID]string, len(draft.Lines))
	for _, line := range draft.Lines {
		names[line.ProductID] = line.Name
	}

	var msgs []notify.Message
	for _, res := range results {
		if !res.LowStock {
			continue
		}
		msgs = append(msgs, notify.Message{
			RecipientID: draft.SellerID,
			Kind:        enums.NotificationKindLowStock,
			Title:       "Low stock",
			Body:        fmt.Sprintf("%s has %d units left.", names[res.ProductID], res.Remaining),
		})
	}
	return msgs
}

func (s *service) AdvanceStatus(ctx context.Context, input AdvanceInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.To == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}
	if input.To == enums.OrderStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the return operation to return an order")
	}
	if input.To == enums.OrderStatusDelivered && s.codes != nil {
		if err := s.checkDeliveryCode(ctx, input); err != nil {
			return nil, err
		}
	}

	var advanced *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return orderLoadError(err)
		}

		entry, err := orderstate.Transition(order, orderstate.TransitionInput{
			To:             input.To,
			ActorID:        input.ActorID,
			Note:           input.Note,
			TrackingNumber: input.TrackingNumber,
		})
		if err != nil {
			return err
		}

		updates := map[string]any{"status": order.Status}
		if order.TrackingNumber != nil {
			updates["tracking_number"] = *order.TrackingNumber
		}
		if input.To == enums.OrderStatusDelivered {
			updates["actual_delivery"] = order.ActualDelivery
			if err := s.stats.WithTx(tx).RecordDelivered(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record delivery stats")
			}
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		if err := repo.CreateStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
		}
		advanced = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(input.To))
	body := fmt.Sprintf("Order %s is now %s.", advanced.OrderNumber, advanced.Status)
	if input.To == enums.OrderStatusOutForDelivery && s.codes != nil {
		code, issueErr := s.codes.Issue(ctx, deliveryCodeKind, advanced.ID.String())
		if issueErr != nil {
			s.logger.Warn(s.logger.WithField(ctx, "order_id", advanced.ID.String()), "delivery code issue failed")
		} else {
			body = fmt.Sprintf("%s Your delivery confirmation code is %s.", body, code)
		}
	}
	s.afterTransition(ctx, advanced, body)
	return advanced, nil
}

func (s *service) CancelOrder(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return orderLoadError(err)
		}

		entry, err := orderstate.Transition(order, orderstate.TransitionInput{
			To:      enums.OrderStatusCancelled,
			ActorID: input.ActorID,
			Note:    input.Reason,
		})
		if err != nil {
			return err
		}

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
		}
		if _, err := inventory.Release(ctx, tx, items); err != nil {
			return err
		}

		updates := map[string]any{
			"status":      order.Status,
			"canceled_at": order.CanceledAt,
		}
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			order.CancelReason = &reason
			updates["cancel_reason"] = reason
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		if err := repo.CreateStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A paid order gets its money back in full. The refund runs outside the
	// cancel transaction: the gateway call must never hold a DB transaction
	// open, and a refund failure leaves the order cancelled and the payment
	// refundable through the refund operation.
	if cancelled.PaymentStatus == enums.OrderPaymentStatusPaid && cancelled.Payment != nil {
		outcome, err := s.refunds.Refund(ctx, payments.RefundInput{
			PaymentID: cancelled.Payment.ID,
			Reason:    "order cancelled",
			ActorID:   input.ActorID,
		})
		if err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, cancelled.ID.String()), "refund on cancel failed", err)
		} else if outcome.FullyRefunded {
			if err := s.orders.UpdateOrder(ctx, cancelled.ID, map[string]any{
				"payment_status": enums.OrderPaymentStatusRefunded,
			}); err != nil {
				s.logger.Error(s.logger.WithOrderID(ctx, cancelled.ID.String()), "mark cancelled order refunded", err)
			} else {
				cancelled.PaymentStatus = enums.OrderPaymentStatusRefunded
			}
		}
	}

	s.metrics.IncTransition(string(enums.OrderStatusCancelled))
	s.afterTransition(ctx, cancelled, fmt.Sprintf("Order %s was cancelled.", cancelled.OrderNumber))
	return cancelled, nil
}

func (s *service) RequestReturn(ctx context.Context, input ReturnInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return reason required")
	}

	now := time.Now().UTC()
	var returned *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return orderLoadError(err)
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		if order.Status == enums.OrderStatusDelivered {
			if order.ActualDelivery == nil || now.After(order.ActualDelivery.Add(s.cfg.ReturnWindow)) {
				return pkgerrors.New(pkgerrors.CodeValidation, "return window has closed")
			}
		}

		entry, err := orderstate.Transition(order, orderstate.TransitionInput{
			To:      enums.OrderStatusReturned,
			ActorID: input.CustomerID,
			Note:    input.Reason,
			Now:     now,
		})
		if err != nil {
			return err
		}

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
		}
		if _, err := inventory.Release(ctx, tx, items); err != nil {
			return err
		}

		order.ReturnRequest = &types.ReturnRequest{
			Reason:      strings.TrimSpace(input.Reason),
			ItemIDs:     input.ItemIDs,
			RequestedAt: now,
		}
		updates := map[string]any{
			"status":         order.Status,
			"return_request": order.ReturnRequest,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		if err := repo.CreateStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
		}
		returned = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(enums.OrderStatusReturned))
	s.notifier.Dispatch(ctx, notify.Message{
		RecipientID: returned.SellerID,
		Kind:        enums.NotificationKindOrderStatus,
		Title:       "Return requested",
		Body:        fmt.Sprintf("Order %s was returned: %s", returned.OrderNumber, input.Reason),
		OrderID:     &returned.ID,
	})
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Kind:       realtime.KindStatusChanged,
		OrderID:    returned.ID,
		CustomerID: returned.CustomerID,
		SellerID:   returned.SellerID,
		Status:     returned.Status,
	})
	return returned, nil
}

func (s *service) ProcessRefund(ctx context.Context, input payments.RefundInput) (*payments.RefundOutcome, error) {
	outcome, err := s.refunds.Refund(ctx, input)
	if err != nil {
		return nil, err
	}

	if outcome.Order != nil {
		s.notifier.Dispatch(ctx, notify.Message{
			RecipientID: outcome.Order.CustomerID,
			Kind:        enums.NotificationKindRefundUpdate,
			Title:       "Refund processed",
			Body:        fmt.Sprintf("%s was refunded for order %s.", formatCents(outcome.AmountCents, outcome.Payment.Currency), outcome.Order.OrderNumber),
			OrderID:     &outcome.Order.ID,
		})
		s.broadcaster.Broadcast(ctx, realtime.Event{
			Kind:       realtime.KindRefundUpdate,
			OrderID:    outcome.Order.ID,
			CustomerID: outcome.Order.CustomerID,
			SellerID:   outcome.Order.SellerID,
			Status:     outcome.Order.Status,
		})
	}
	return outcome, nil
}

// checkDeliveryCode gates the delivered transition on the confirmation code
// issued at out_for_delivery. An order whose code expired (or was never
// issued, e.g. codes were enabled later) can still be delivered without one.
func (s *service) checkDeliveryCode(ctx context.Context, input AdvanceInput) error {
	recipient := input.OrderID.String()
	if input.ConfirmationCode != "" {
		return s.codes.Check(ctx, deliveryCodeKind, recipient, input.ConfirmationCode)
	}
	outstanding, err := s.codes.Outstanding(ctx, deliveryCodeKind, recipient)
	if err != nil {
		return err
	}
	if outstanding {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery confirmation code required")
	}
	return nil
}

func (s *service) afterTransition(ctx context.Context, order *models.Order, body string) {
	s.notifier.Dispatch(ctx, notify.Message{
		RecipientID: order.CustomerID,
		Kind:        enums.NotificationKindOrderStatus,
		Title:       "Order update",
		Body:        body,
		OrderID:     &order.ID,
	})
	s.broadcaster.Broadcast(ctx, realtime.Event{
		Kind:       realtime.KindStatusChanged,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		SellerID:   order.SellerID,
		Status:     order.Status,
	})
}

func (s *service) currency() string {
	if s.cfg.Currency != "" {
		return s.cfg.Currency
	}
	return "USD"
}

func orderLoadError(err error) error {
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func formatCents(cents int, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
