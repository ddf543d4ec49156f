package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateStatusHistory(ctx context.Context, entry *models.StatusHistoryEntry) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	FindStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.StatusHistoryEntry, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, query ListOrdersQuery) (*OrderList, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, query ListOrdersQuery) (*OrderList, error)
	FindPendingOnlineOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
}
