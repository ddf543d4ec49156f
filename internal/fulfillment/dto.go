package fulfillment

import (
	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
)

// SellerFailure names a seller whose order could not be placed and why.
type SellerFailure struct {
	SellerID uuid.UUID `json:"seller_id"`
	Reason   string    `json:"reason"`
}

// OrderBatchResult reports the outcome of one checkout: every seller order
// that was placed plus every seller that failed. The two lists are disjoint
// and together cover the whole cart.
type OrderBatchResult struct {
	Created []*models.Order `json:"created"`
	Failed  []SellerFailure `json:"failed"`
}

// AdvanceInput moves one order along its lifecycle. ConfirmationCode is the
// delivery code shared with the customer; when supplied on a delivered
// transition it is checked against the issued code.
type AdvanceInput struct {
	OrderID          uuid.UUID
	To               enums.OrderStatus
	ActorID          uuid.UUID
	Note             string
	TrackingNumber   *string
	ConfirmationCode string
}

// CancelInput cancels one order and restores its reserved stock.
type CancelInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Reason  string
}

// ReturnInput opens a return for a delivered order.
type ReturnInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Reason     string
	ItemIDs    []uuid.UUID
}
