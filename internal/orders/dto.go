package orders

import (
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/pagination"
)

// ListOrdersQuery filters one page of a customer's or seller's orders.
type ListOrdersQuery struct {
	Limit  int
	Cursor *pagination.Cursor
	Status *enums.OrderStatus
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor *pagination.Cursor
}
