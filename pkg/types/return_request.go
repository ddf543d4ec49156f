package types

import (
	"time"

	"github.com/google/uuid"
)

// ReturnRequest captures a customer's return of a delivered order. Stored as
// JSON on the order row; absence means no return was requested.
type ReturnRequest struct {
	Reason      string      `json:"reason"`
	ItemIDs     []uuid.UUID `json:"item_ids,omitempty"`
	RequestedAt time.Time   `json:"requested_at"`
}
