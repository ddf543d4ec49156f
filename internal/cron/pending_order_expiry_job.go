package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

// systemActorID stamps status history for automated transitions.
var systemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type pendingOrderReader interface {
	FindPendingOnlineOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type orderCanceler interface {
	CancelOrder(ctx context.Context, input fulfillment.CancelInput) (*models.Order, error)
}

// PendingOrderExpiryJobParams configure the expiry sweep.
type PendingOrderExpiryJobParams struct {
	Logger   *logger.Logger
	Orders   pendingOrderReader
	Canceler orderCanceler
	TTL      time.Duration
	Now      func() time.Time
}

// NewPendingOrderExpiryJob builds the job that cancels online orders whose
// payment never arrived. Cancelling through the coordinator restores the
// reserved stock and writes the status history like any other cancellation.
func NewPendingOrderExpiryJob(params PendingOrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Canceler == nil {
		return nil, fmt.Errorf("order canceler required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("pending order ttl must be positive")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &pendingOrderExpiryJob{
		logg:     params.Logger,
		orders:   params.Orders,
		canceler: params.Canceler,
		ttl:      params.TTL,
		now:      now,
	}, nil
}

type pendingOrderExpiryJob struct {
	logg     *logger.Logger
	orders   pendingOrderReader
	canceler orderCanceler
	ttl      time.Duration
	now      func() time.Time
}

func (j *pendingOrderExpiryJob) Name() string { return "pending-order-expiry" }

func (j *pendingOrderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.FindPendingOnlineOrdersBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs error
	expired := 0
	for _, order := range stale {
		_, cancelErr := j.canceler.CancelOrder(ctx, fulfillment.CancelInput{
			OrderID: order.ID,
			ActorID: systemActorID,
			Reason:  "payment not completed in time",
		})
		if cancelErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, cancelErr))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"candidates": len(stale), "expired": expired})
	j.logg.Info(logCtx, "pending order expiry sweep complete")
	return errs
}
