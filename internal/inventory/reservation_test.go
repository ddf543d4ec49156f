package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

func TestReserve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	productA := seedProduct(t, db, 5, 2)
	productB := seedProduct(t, db, 1, 0)

	requests := []ReservationRequest{
		{ProductID: productA, Qty: 3},
		{ProductID: productA, Qty: 4},
		{ProductID: productB, Qty: 1},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Reserve(ctx, tx, requests)
		if terr != nil {
			return terr
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if !results[0].Reserved || results[0].Reason != "" {
			t.Fatalf("expected first reservation to succeed: %+v", results[0])
		}
		if results[0].Remaining != 2 {
			t.Fatalf("expected 2 remaining, got %d", results[0].Remaining)
		}
		if results[1].Reserved || !strings.Contains(results[1].Reason, "insufficient stock") {
			t.Fatalf("expected second reservation to fail with reason: %+v", results[1])
		}
		if !results[2].Reserved {
			t.Fatalf("expected third reservation to succeed")
		}
		if !results[2].LowStock {
			t.Fatalf("expected low stock flag when stock hits zero")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reserve transaction: %v", err)
	}

	if got := loadStock(t, db, productA); got != 2 {
		t.Fatalf("unexpected stock for product a: %d", got)
	}
	if got := loadStock(t, db, productB); got != 0 {
		t.Fatalf("unexpected stock for product b: %d", got)
	}
}

func TestReserveRollbackRestoresStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10, 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := Reserve(ctx, tx, []ReservationRequest{{ProductID: product, Qty: 4}})
		if terr != nil {
			return terr
		}
		if !results[0].Reserved {
			t.Fatalf("expected reservation to succeed")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "sibling line failed")
	})
	if err == nil {
		t.Fatal("expected transaction to roll back")
	}

	if got := loadStock(t, db, product); got != 10 {
		t.Fatalf("expected rollback to restore stock, got %d", got)
	}
}

func TestReserveInactiveProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 0)
	if err := db.Model(&models.Product{}).Where("id = ?", product).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	results, err := Reserve(ctx, db, []ReservationRequest{{ProductID: product, Qty: 1}})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if results[0].Reserved || results[0].Reason != "product is no longer available" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	results, err := Reserve(context.Background(), db, []ReservationRequest{{ProductID: uuid.New(), Qty: 1}})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if results[0].Reserved || results[0].Reason != "product not found" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestReserveInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := seedProduct(t, db, 5, 0)

	_, err := Reserve(context.Background(), db, []ReservationRequest{{ProductID: product, Qty: 0}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10, 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, terr := Reserve(ctx, tx, []ReservationRequest{{ProductID: product, Qty: 4}})
		return terr
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	item := models.OrderItem{ID: uuid.New(), OrderID: uuid.New(), ProductID: product, Name: "widget", SKU: "W-1", UnitPriceCents: 100, Qty: 4}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed order item: %v", err)
	}

	restored, err := Release(ctx, db, []models.OrderItem{item})
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 item restored, got %d", restored)
	}
	if got := loadStock(t, db, product); got != 10 {
		t.Fatalf("expected stock back at 10, got %d", got)
	}

	// Releasing the same items again must be a no-op.
	restored, err = Release(ctx, db, []models.OrderItem{item})
	if err != nil {
		t.Fatalf("second release: %v", err)
	}
	if restored != 0 {
		t.Fatalf("expected no items restored on repeat, got %d", restored)
	}
	if got := loadStock(t, db, product); got != 10 {
		t.Fatalf("stock double-credited: %d", got)
	}
}

func TestFirstFailure(t *testing.T) {
	t.Parallel()

	results := []ReservationResult{
		{Reserved: true},
		{Reserved: false, Reason: "insufficient stock: requested 2, available 1"},
	}
	if AllReserved(results) {
		t.Fatal("expected batch to report failure")
	}
	failure, ok := FirstFailure(results)
	if !ok || failure.Reason == "" {
		t.Fatalf("expected first failure with reason, got %+v", failure)
	}
}

func seedProduct(t *testing.T, db *gorm.DB, stock, lowThreshold int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:                uuid.New(),
		SellerID:          uuid.New(),
		Name:              "widget",
		SKU:               "W-1",
		PriceCents:        1999,
		Stock:             stock,
		LowStockThreshold: lowThreshold,
		DeliveryDays:      3,
		Active:            true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func loadStock(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.Stock
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  image_url TEXT,
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  delivery_days INTEGER NOT NULL DEFAULT 3,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  image_url TEXT,
  variant TEXT,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  delivery_days INTEGER NOT NULL DEFAULT 0,
  stock_restored INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(products).Error; err != nil {
		t.Fatalf("create products table: %v", err)
	}
	if err := db.Exec(orderItems).Error; err != nil {
		t.Fatalf("create order_items table: %v", err)
	}
	return db
}
