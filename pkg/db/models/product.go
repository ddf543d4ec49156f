package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog row consumed by the fulfillment engine. Catalog CRUD
// is owned elsewhere; this engine only reads product state and performs
// conditional stock updates. Stock stays non-negative under concurrency
// because every decrement is a single conditional UPDATE.
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID          uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Name              string    `gorm:"column:name;not null"`
	SKU               string    `gorm:"column:sku;not null"`
	ImageURL          *string   `gorm:"column:image_url"`
	PriceCents        int       `gorm:"column:price_cents;not null"`
	Stock             int       `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null;default:5"`
	DeliveryDays      int       `gorm:"column:delivery_days;not null;default:3"`
	Active            bool      `gorm:"column:active;not null;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
