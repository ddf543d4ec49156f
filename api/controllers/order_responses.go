package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db/models"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/types"
)

type orderResponse struct {
	OrderID           uuid.UUID            `json:"order_id"`
	OrderNumber       string               `json:"order_number"`
	CustomerID        uuid.UUID            `json:"customer_id"`
	SellerID          uuid.UUID            `json:"seller_id"`
	Currency          string               `json:"currency"`
	Status            string               `json:"status"`
	PaymentMethod     string               `json:"payment_method"`
	PaymentStatus     string               `json:"payment_status"`
	SubtotalCents     int                  `json:"subtotal_cents"`
	ShippingCents     int                  `json:"shipping_cents"`
	TaxCents          int                  `json:"tax_cents"`
	TotalCents        int                  `json:"total_cents"`
	ShippingAddress   *types.Address       `json:"shipping_address,omitempty"`
	TrackingNumber    *string              `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time           `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time           `json:"actual_delivery,omitempty"`
	CanceledAt        *time.Time           `json:"canceled_at,omitempty"`
	CancelReason      *string              `json:"cancel_reason,omitempty"`
	ReturnRequest     *types.ReturnRequest `json:"return_request,omitempty"`
	Items             []orderItemResponse  `json:"items,omitempty"`
	Payment           *paymentResponse     `json:"payment,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

type orderItemResponse struct {
	ItemID         uuid.UUID `json:"item_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	ImageURL       *string   `json:"image_url,omitempty"`
	Variant        *string   `json:"variant,omitempty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Qty            int       `json:"qty"`
}

type paymentResponse struct {
	PaymentID        uuid.UUID `json:"payment_id"`
	OrderID          uuid.UUID `json:"order_id"`
	AmountCents      int       `json:"amount_cents"`
	RefundedCents    int       `json:"refunded_cents"`
	Currency         string    `json:"currency"`
	GatewayIntentID  string    `json:"gateway_intent_id"`
	GatewayPaymentID *string   `json:"gateway_payment_id,omitempty"`
	Status           string    `json:"status"`
	FailureReason    *string   `json:"failure_reason,omitempty"`
}

type historyEntryResponse struct {
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	ActorID   uuid.UUID `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	resp := orderResponse{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		SellerID:          order.SellerID,
		Currency:          order.Currency,
		Status:            string(order.Status),
		PaymentMethod:     string(order.PaymentMethod),
		PaymentStatus:     string(order.PaymentStatus),
		SubtotalCents:     order.SubtotalCents,
		ShippingCents:     order.ShippingCents,
		TaxCents:          order.TaxCents,
		TotalCents:        order.TotalCents,
		ShippingAddress:   order.ShippingAddress,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		ActualDelivery:    order.ActualDelivery,
		CanceledAt:        order.CanceledAt,
		CancelReason:      order.CancelReason,
		ReturnRequest:     order.ReturnRequest,
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, newOrderItemResponse(item))
	}
	if order.Payment != nil {
		payment := newPaymentResponse(order.Payment)
		resp.Payment = &payment
	}
	return resp
}

func newOrderItemResponse(item models.OrderItem) orderItemResponse {
	return orderItemResponse{
		ItemID:         item.ID,
		ProductID:      item.ProductID,
		Name:           item.Name,
		SKU:            item.SKU,
		ImageURL:       item.ImageURL,
		Variant:        item.Variant,
		UnitPriceCents: item.UnitPriceCents,
		Qty:            item.Qty,
	}
}

func newPaymentResponse(payment *models.Payment) paymentResponse {
	if payment == nil {
		return paymentResponse{}
	}
	return paymentResponse{
		PaymentID:        payment.ID,
		OrderID:          payment.OrderID,
		AmountCents:      payment.AmountCents,
		RefundedCents:    payment.RefundedCents,
		Currency:         payment.Currency,
		GatewayIntentID:  payment.GatewayIntentID,
		GatewayPaymentID: payment.GatewayPaymentID,
		Status:           string(payment.Status),
		FailureReason:    payment.FailureReason,
	}
}

func newHistoryResponse(entries []models.StatusHistoryEntry) []historyEntryResponse {
	out := make([]historyEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntryResponse{
			Status:    string(entry.Status),
			Note:      entry.Note,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
