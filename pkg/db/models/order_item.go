package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the immutable snapshot of a purchased product line. Catalog
// edits after checkout never alter these rows. StockRestored guards the
// release path so a repeated cancel cannot double-credit inventory.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	SKU            string    `gorm:"column:sku;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	Variant        *string   `gorm:"column:variant"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	DeliveryDays   int       `gorm:"column:delivery_days;not null;default:0"`
	StockRestored  bool      `gorm:"column:stock_restored;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
