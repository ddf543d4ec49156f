package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/types"
)

// Order is the per-seller order produced from a single checkout. One checkout
// may create several of these, one per seller. Orders are never hard-deleted;
// cancellation and refund are terminal statuses.
type Order struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string                   `gorm:"column:order_number;uniqueIndex;not null"`
	CustomerID        uuid.UUID                `gorm:"column:customer_id;type:uuid;not null;index"`
	SellerID          uuid.UUID                `gorm:"column:seller_id;type:uuid;not null;index"`
	Currency          string                   `gorm:"column:currency;not null;default:'USD'"`
	Status            enums.OrderStatus        `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod     enums.PaymentMethod      `gorm:"column:payment_method;not null;default:'cod'"`
	PaymentStatus     enums.OrderPaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	SubtotalCents     int                      `gorm:"column:subtotal_cents;not null"`
	ShippingCents     int                      `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents          int                      `gorm:"column:tax_cents;not null;default:0"`
	TotalCents        int                      `gorm:"column:total_cents;not null"`
	ShippingAddress   *types.Address           `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	TrackingNumber    *string                  `gorm:"column:tracking_number"`
	EstimatedDelivery *time.Time               `gorm:"column:estimated_delivery"`
	ActualDelivery    *time.Time               `gorm:"column:actual_delivery"`
	CanceledAt        *time.Time               `gorm:"column:canceled_at"`
	CancelReason      *string                  `gorm:"column:cancel_reason"`
	ReturnRequest     *types.ReturnRequest     `gorm:"column:return_request;type:jsonb;serializer:json"`
	Items             []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory     []StatusHistoryEntry     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment           *Payment                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
