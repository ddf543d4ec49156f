package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerStats aggregates per-seller order counters. Updated by the
// fulfillment coordinator's delivered hook, not by the state machine.
type SellerStats struct {
	SellerID          uuid.UUID `gorm:"column:seller_id;type:uuid;primaryKey"`
	TotalOrders       int64     `gorm:"column:total_orders;not null;default:0"`
	TotalRevenueCents int64     `gorm:"column:total_revenue_cents;not null;default:0"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerStats aggregates per-customer order counters.
type CustomerStats struct {
	CustomerID      uuid.UUID `gorm:"column:customer_id;type:uuid;primaryKey"`
	TotalOrders     int64     `gorm:"column:total_orders;not null;default:0"`
	TotalSpentCents int64     `gorm:"column:total_spent_cents;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
