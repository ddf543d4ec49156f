package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
)

// Recorder maintains per-seller and per-customer lifetime counters. Only
// delivered orders count toward them.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) (*Recorder, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Recorder{db: db}, nil
}

func (r *Recorder) WithTx(tx *gorm.DB) *Recorder {
	if tx == nil {
		return r
	}
	return &Recorder{db: tx}
}

// RecordDelivered bumps both parties' counters for a delivered order. The
// increment runs as a conditional UPDATE so concurrent deliveries to the
// same seller cannot lose counts; a missing row is created on first use.
func (r *Recorder) RecordDelivered(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order required")
	}

	seller := r.db.WithContext(ctx).
		Model(&models.SellerStats{}).
		Where("seller_id = ?", order.SellerID).
		Updates(map[string]any{
			"total_orders":        gorm.Expr("total_orders + 1"),
			"total_revenue_cents": gorm.Expr("total_revenue_cents + ?", order.TotalCents),
		})
	if seller.Error != nil {
		return seller.Error
	}
	if seller.RowsAffected == 0 {
		row := &models.SellerStats{
			SellerID:          order.SellerID,
			TotalOrders:       1,
			TotalRevenueCents: int64(order.TotalCents),
		}
		if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}

	customer := r.db.WithContext(ctx).
		Model(&models.CustomerStats{}).
		Where("customer_id = ?", order.CustomerID).
		Updates(map[string]any{
			"total_orders":      gorm.Expr("total_orders + 1"),
			"total_spent_cents": gorm.Expr("total_spent_cents + ?", order.TotalCents),
		})
	if customer.Error != nil {
		return customer.Error
	}
	if customer.RowsAffected == 0 {
		row := &models.CustomerStats{
			CustomerID:      order.CustomerID,
			TotalOrders:     1,
			TotalSpentCents: int64(order.TotalCents),
		}
		if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

// SellerStats loads the counters for one seller; zero-valued when absent.
func (r *Recorder) SellerStats(ctx context.Context, sellerID uuid.UUID) (*models.SellerStats, error) {
	var row models.SellerStats
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return &models.SellerStats{SellerID: sellerID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CustomerStats loads the counters for one customer; zero-valued when absent.
func (r *Recorder) CustomerStats(ctx context.Context, customerID uuid.UUID) (*models.CustomerStats, error) {
	var row models.CustomerStats
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return &models.CustomerStats{CustomerID: customerID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
