package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

// ReservationRequest asks for qty units of a product to be taken off stock.
type ReservationRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// ReservationResult reports the outcome for a single request line.
type ReservationResult struct {
	ProductID uuid.UUID
	Qty       int
	Reserved  bool
	Reason    string
	// Remaining is the stock left after a successful reservation.
	Remaining int
	// LowStock is set when the remaining stock dropped to or below the
	// product's low stock threshold.
	LowStock bool
}

// Reserve decrements stock for each request line with a conditional UPDATE,
// so concurrent checkouts can never oversell. Lines are processed
// independently: a failed line is reported in its result, not as an error.
// Callers run Reserve inside a transaction and roll back to undo successful
// lines when they require all-or-nothing semantics.
func Reserve(ctx context.Context, tx *gorm.DB, requests []ReservationRequest) ([]ReservationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reserve requires a transaction")
	}
	for _, req := range requests {
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("reservation qty must be positive for product %s", req.ProductID))
		}
	}

	results := make([]ReservationResult, 0, len(requests))
	for _, req := range requests {
		result := ReservationResult{ProductID: req.ProductID, Qty: req.Qty}

		update := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND active = ? AND stock >= ?", req.ProductID, true, req.Qty).
			Update("stock", gorm.Expr("stock - ?", req.Qty))
		if update.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, update.Error, "reserve stock")
		}

		if update.RowsAffected == 0 {
			result.Reason = failureReason(ctx, tx, req)
			results = append(results, result)
			continue
		}

		var product models.Product
		if err := tx.WithContext(ctx).
			Select("stock", "low_stock_threshold").
			First(&product, "id = ?", req.ProductID).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load reserved product")
		}

		result.Reserved = true
		result.Remaining = product.Stock
		result.LowStock = product.Stock <= product.LowStockThreshold
		results = append(results, result)
	}
	return results, nil
}

func failureReason(ctx context.Context, tx *gorm.DB, req ReservationRequest) string {
	var product models.Product
	err := tx.WithContext(ctx).
		Select("stock", "active").
		First(&product, "id = ?", req.ProductID).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return "product not found"
	case err != nil:
		return "product lookup failed"
	case !product.Active:
		return "product is no longer available"
	default:
		return fmt.Sprintf("insufficient stock: requested %d, available %d", req.Qty, product.Stock)
	}
}

// AllReserved reports whether every line in the batch succeeded.
func AllReserved(results []ReservationResult) bool {
	for _, r := range results {
		if !r.Reserved {
			return false
		}
	}
	return true
}

// FirstFailure returns the result of the first failed line, if any.
func FirstFailure(results []ReservationResult) (ReservationResult, bool) {
	for _, r := range results {
		if !r.Reserved {
			return r, true
		}
	}
	return ReservationResult{}, false
}

// Release restores stock for order items whose reservation has not been
// restored yet. Each item is flipped to stock_restored with a conditional
// UPDATE before the credit, so a repeated release never double-credits.
// It returns the number of items actually restored.
func Release(ctx context.Context, tx *gorm.DB, items []models.OrderItem) (int, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "release requires a transaction")
	}

	restored := 0
	for _, item := range items {
		claim := tx.WithContext(ctx).
			Model(&models.OrderItem{}).
			Where("id = ? AND stock_restored = ?", item.ID, false).
			Update("stock_restored", true)
		if claim.Error != nil {
			return restored, pkgerrors.Wrap(pkgerrors.CodeInternal, claim.Error, "claim item for restore")
		}
		if claim.RowsAffected == 0 {
			continue
		}

		credit := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Qty))
		if credit.Error != nil {
			return restored, pkgerrors.Wrap(pkgerrors.CodeInternal, credit.Error, "restore stock")
		}
		restored++
	}
	return restored, nil
}
