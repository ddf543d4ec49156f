package orderstate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

// transitions is the full edge set of the order lifecycle. Any edge not
// listed here is invalid, without exception.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:      {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing:     {enums.OrderStatusPacked, enums.OrderStatusCancelled},
	enums.OrderStatusPacked:         {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:        {enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered},
	enums.OrderStatusOutForDelivery: {enums.OrderStatusDelivered, enums.OrderStatusReturned},
	enums.OrderStatusDelivered:      {enums.OrderStatusReturned},
	enums.OrderStatusCancelled:      {},
	enums.OrderStatusReturned:       {enums.OrderStatusRefunded},
	enums.OrderStatusRefunded:       {},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the valid next statuses from the given state.
func AllowedTargets(from enums.OrderStatus) []enums.OrderStatus {
	targets := transitions[from]
	out := make([]enums.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// TransitionInput carries everything a single transition may record.
type TransitionInput struct {
	To             enums.OrderStatus
	ActorID        uuid.UUID
	Note           string
	TrackingNumber *string
	Now            time.Time
}

// Transition validates the edge and applies it to the order in memory:
// status, the timestamp stamps for delivered/cancelled, and an optional
// tracking number. It returns the StatusHistoryEntry the caller must persist
// alongside the order. The machine never touches storage and never performs
// side effects; that sequencing belongs to the coordinator.
func Transition(order *models.Order, input TransitionInput) (*models.StatusHistoryEntry, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}
	if !input.To.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.To))
	}
	if !CanTransition(order.Status, input.To) {
		return nil, invalidTransition(order.Status, input.To)
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	order.Status = input.To
	switch input.To {
	case enums.OrderStatusDelivered:
		order.ActualDelivery = &now
	case enums.OrderStatusCancelled:
		order.CanceledAt = &now
	}
	if input.TrackingNumber != nil && strings.TrimSpace(*input.TrackingNumber) != "" {
		order.TrackingNumber = input.TrackingNumber
	}

	entry := &models.StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    input.To,
		ActorID:   input.ActorID,
		CreatedAt: now,
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		entry.Note = &note
	}
	return entry, nil
}

func invalidTransition(from, to enums.OrderStatus) error {
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and cannot change status", from))
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", from, to))
}
