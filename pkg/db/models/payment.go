package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
)

// Payment tracks the gateway payment lifecycle for a single order (1:1).
// RefundedCents is a running total and can never exceed AmountCents; the row
// flips to refunded only when the full amount has been returned.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	AmountCents      int                 `gorm:"column:amount_cents;not null"`
	RefundedCents    int                 `gorm:"column:refunded_cents;not null;default:0"`
	Currency         string              `gorm:"column:currency;not null;default:'USD'"`
	GatewayIntentID  string              `gorm:"column:gateway_intent_id;uniqueIndex;not null"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id"`
	Status           enums.PaymentStatus `gorm:"column:status;not null;default:'created'"`
	FailureReason    *string             `gorm:"column:failure_reason"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
