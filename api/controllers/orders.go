package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/middleware"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/responses"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/validators"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	internalorders "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orders"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/pagination"
)

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// ListOrders returns customer- or seller-perspective order pages depending on
// the authenticated role.
func ListOrders(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query, err := buildListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list *internalorders.OrderList
		switch middleware.RoleFromContext(r.Context()) {
		case string(enums.RoleSeller):
			list, err = repo.ListSellerOrders(r.Context(), actorID, query)
		default:
			list, err = repo.ListCustomerOrders(r.Context(), actorID, query)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders"))
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(list))
	}
}

// OrderDetail returns a single order after checking the caller owns it.
func OrderDetail(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := repo.FindOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found"))
			return
		}
		if order.CustomerID != actorID && order.SellerID != actorID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller"))
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderHistory returns the append-only status trail of one order.
func OrderHistory(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := repo.FindOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found"))
			return
		}
		if order.CustomerID != actorID && order.SellerID != actorID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller"))
			return
		}

		entries, err := repo.FindStatusHistory(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch status history"))
			return
		}

		responses.WriteSuccess(w, newHistoryResponse(entries))
	}
}

type advanceStatusRequest struct {
	Status           string  `json:"status" validate:"required"`
	Note             string  `json:"note,omitempty" validate:"omitempty,max=500"`
	TrackingNumber   *string `json:"tracking_number,omitempty" validate:"omitempty,max=64"`
	ConfirmationCode string  `json:"confirmation_code,omitempty" validate:"omitempty,max=12"`
}

// AdvanceOrderStatus moves a seller's order one step along its lifecycle.
func AdvanceOrderStatus(svc fulfillment.Service, repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if err := requireSellerOwnership(r, repo, orderID, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AdvanceStatus(r.Context(), fulfillment.AdvanceInput{
			OrderID:          orderID,
			To:               target,
			ActorID:          actorID,
			Note:             validators.SanitizeString(payload.Note, 500),
			TrackingNumber:   payload.TrackingNumber,
			ConfirmationCode: strings.TrimSpace(payload.ConfirmationCode),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CancelOrder cancels an order, restores its stock, and refunds any captured
// payment.
func CancelOrder(svc fulfillment.Service, repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requireParticipant(r, repo, orderID, actorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CancelOrder(r.Context(), fulfillment.CancelInput{
			OrderID: orderID,
			ActorID: actorID,
			Reason:  validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type returnOrderRequest struct {
	Reason  string      `json:"reason" validate:"required,max=500"`
	ItemIDs []uuid.UUID `json:"item_ids,omitempty"`
}

// RequestReturn opens a return for a delivered order.
func RequestReturn(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload returnOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RequestReturn(r.Context(), fulfillment.ReturnInput{
			OrderID:    orderID,
			CustomerID: actorID,
			Reason:     validators.SanitizeString(payload.Reason, 500),
			ItemIDs:    payload.ItemIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func buildListQuery(r *http.Request) (internalorders.ListOrdersQuery, error) {
	query := internalorders.ListOrdersQuery{}

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return query, err
	}
	query.Limit = limit

	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		cursor, err := pagination.ParseCursor(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}

	return query, nil
}

func newOrderListResponse(list *internalorders.OrderList) orderListResponse {
	resp := orderListResponse{Orders: []orderResponse{}}
	if list == nil {
		return resp
	}
	for i := range list.Orders {
		resp.Orders = append(resp.Orders, newOrderResponse(&list.Orders[i]))
	}
	if list.NextCursor != nil {
		resp.NextCursor = pagination.EncodeCursor(*list.NextCursor)
	}
	return resp
}

func orderIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func requireSellerOwnership(r *http.Request, repo internalorders.Repository, orderID, actorID uuid.UUID) error {
	if repo == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable")
	}
	order, err := repo.FindOrder(r.Context(), orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	if order.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
	}
	return nil
}

func requireParticipant(r *http.Request, repo internalorders.Repository, orderID, actorID uuid.UUID) error {
	if repo == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "orders repository unavailable")
	}
	order, err := repo.FindOrder(r.Context(), orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	if order.CustomerID != actorID && order.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return nil
}
