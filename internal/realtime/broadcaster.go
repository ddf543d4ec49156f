package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	pubsubpkg "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/pubsub"
)

// Event kinds fanned out on the order events topic.
const (
	KindOrderPlaced   = "order_placed"
	KindStatusChanged = "order_status_changed"
	KindPaymentUpdate = "payment_update"
	KindRefundUpdate  = "refund_update"
)

const publishTimeout = 15 * time.Second

// Event is the wire envelope consumers receive for order lifecycle changes.
type Event struct {
	EventID    string            `json:"event_id"`
	Kind       string            `json:"kind"`
	OrderID    uuid.UUID         `json:"order_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	SellerID   uuid.UUID         `json:"seller_id"`
	Status     enums.OrderStatus `json:"status,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

// Broadcaster pushes order lifecycle events to the realtime topic. Delivery
// is best effort with a short bounded retry: a broker outage slows nothing
// down and loses nothing but the live update.
type Broadcaster struct {
	pub    publisher
	logger *logger.Logger
}

// NewBroadcaster wires the broadcaster onto the order events topic.
func NewBroadcaster(client *pubsubpkg.Client, logg *logger.Logger) (*Broadcaster, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Broadcaster{pub: &gcpPublisher{publisher: client.OrderEventsPublisher()}, logger: logg}, nil
}

// newBroadcasterWithPublisher is a test hook.
func newBroadcasterWithPublisher(pub publisher, logg *logger.Logger) *Broadcaster {
	return &Broadcaster{pub: pub, logger: logg}
}

// Broadcast publishes the event. It never returns an error.
func (b *Broadcaster) Broadcast(ctx context.Context, event Event) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error(ctx, "encode realtime event", err)
		return
	}
	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_id": event.EventID,
			"kind":     event.Kind,
			"order_id": event.OrderID.String(),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
	err = retry.Do(publishCtx, backoff, func(ctx context.Context) error {
		result := b.pub.Publish(ctx, msg)
		if result == nil {
			return fmt.Errorf("publisher not configured")
		}
		if _, err := result.Get(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		fields := map[string]any{
			"event_id": event.EventID,
			"kind":     event.Kind,
		}
		b.logger.Error(b.logger.WithFields(ctx, fields), "broadcast realtime event", err)
	}
}

type gcpPublisher struct {
	publisher *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.publisher == nil {
		return nil
	}
	return p.publisher.Publish(ctx, msg)
}
