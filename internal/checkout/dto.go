package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/types"
)

// CartLine is one requested product line from the customer's cart.
type CartLine struct {
	ProductID uuid.UUID
	Qty       int
	Variant   *string
}

// CheckoutRequest is the full cart a customer submits for fulfillment.
type CheckoutRequest struct {
	CustomerID      uuid.UUID
	Lines           []CartLine
	PaymentMethod   enums.PaymentMethod
	ShippingAddress types.Address
}

// DraftLine is the priced snapshot of a cart line at split time.
type DraftLine struct {
	ProductID      uuid.UUID
	Name           string
	SKU            string
	ImageURL       *string
	Variant        *string
	UnitPriceCents int
	Qty            int
	DeliveryDays   int
}

// SellerDraft is the per-seller order computed from the cart split. Drafts are
// priced independently so one seller's failure never affects a sibling's
// totals.
type SellerDraft struct {
	SellerID          uuid.UUID
	Lines             []DraftLine
	SubtotalCents     int
	ShippingCents     int
	TaxCents          int
	TotalCents        int
	EstimatedDelivery time.Time
}
