package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

// Message is a single notification addressed to one recipient. The in-app
// copy is always persisted; transports deliver the same content out-of-band.
type Message struct {
	RecipientID uuid.UUID
	Kind        enums.NotificationKind
	Title       string
	Body        string
	OrderID     *uuid.UUID
}

// Transport delivers a message over one channel (email, sms, ...).
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Dispatcher persists in-app notifications and fans them out to the
// configured transports. Delivery is best effort: a failing transport is
// logged and never surfaces to the caller, so order flows cannot be blocked
// by a notification outage.
type Dispatcher struct {
	store      notificationStore
	transports []Transport
	logger     *logger.Logger
}

// NewDispatcher wires the dispatcher. Transports are optional; with none
// configured only the in-app row is written.
func NewDispatcher(store notificationStore, logg *logger.Logger, transports ...Transport) (*Dispatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("notification store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{store: store, transports: transports, logger: logg}, nil
}

// Dispatch delivers every message. It never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs ...Message) {
	for _, msg := range msgs {
		d.dispatchOne(ctx, msg)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, msg Message) {
	if err := validateMessage(msg); err != nil {
		d.logger.Warn(d.logger.WithField(ctx, "reason", err.Error()), "dropping invalid notification")
		return
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: msg.RecipientID,
		Kind:        msg.Kind,
		Title:       msg.Title,
		Message:     msg.Body,
		OrderID:     msg.OrderID,
	}
	if err := d.store.Create(ctx, notification); err != nil {
		d.logger.Error(ctx, "persist notification failed", err)
	}

	if len(d.transports) == 0 {
		return
	}

	var (
		mu       sync.Mutex
		delivery error
	)
	var g errgroup.Group
	for _, transport := range d.transports {
		g.Go(func() error {
			if err := transport.Send(ctx, msg); err != nil {
				mu.Lock()
				delivery = multierr.Append(delivery, fmt.Errorf("%s: %w", transport.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if delivery != nil {
		ctx = d.logger.WithFields(ctx, map[string]any{
			"kind":  string(msg.Kind),
			"error": delivery.Error(),
		})
		d.logger.Warn(ctx, "notification delivery incomplete")
	}
}

func validateMessage(msg Message) error {
	if msg.RecipientID == uuid.Nil {
		return fmt.Errorf("recipient id required")
	}
	if !msg.Kind.IsValid() {
		return fmt.Errorf("invalid notification kind %q", msg.Kind)
	}
	if strings.TrimSpace(msg.Title) == "" || strings.TrimSpace(msg.Body) == "" {
		return fmt.Errorf("title and body required")
	}
	return nil
}
