package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks checkout, payment, and refund outcomes.
type OrderMetrics struct {
	checkoutOrders  *prometheus.CounterVec
	checkoutValue   *prometheus.CounterVec
	reservationFail prometheus.Counter
	verifications   *prometheus.CounterVec
	refunds         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
}

// NewOrderMetrics registers the order pipeline metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	checkoutOrders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders produced by checkout, by outcome.",
	}, []string{"outcome"})
	checkoutValue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_order_value_cents_total",
		Help: "Total value of created orders in cents.",
	}, []string{"payment_method"})
	reservationFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservation_failures_total",
		Help: "Reservation attempts rejected for insufficient stock.",
	})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment verification attempts, by result.",
	}, []string{"result"})
	refunds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_refunds_total",
		Help: "Refund attempts, by result.",
	}, []string{"result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions, by target status.",
	}, []string{"to"})
	reg.MustRegister(checkoutOrders, checkoutValue, reservationFail, verifications, refunds, transitions)
	return &OrderMetrics{
		checkoutOrders:  checkoutOrders,
		checkoutValue:   checkoutValue,
		reservationFail: reservationFail,
		verifications:   verifications,
		refunds:         refunds,
		transitions:     transitions,
	}
}

// IncCheckoutOrder counts one created or failed per-seller order.
func (m *OrderMetrics) IncCheckoutOrder(outcome string) {
	if m == nil || m.checkoutOrders == nil {
		return
	}
	m.checkoutOrders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddCheckoutValue accumulates the value of a created order.
func (m *OrderMetrics) AddCheckoutValue(paymentMethod string, cents int64) {
	if m == nil || m.checkoutValue == nil || cents <= 0 {
		return
	}
	m.checkoutValue.WithLabelValues(normalizeLabel(paymentMethod)).Add(float64(cents))
}

// IncReservationFailure counts a rejected stock reservation.
func (m *OrderMetrics) IncReservationFailure() {
	if m == nil || m.reservationFail == nil {
		return
	}
	m.reservationFail.Inc()
}

// IncVerification counts a payment verification attempt.
func (m *OrderMetrics) IncVerification(result string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncRefund counts a refund attempt.
func (m *OrderMetrics) IncRefund(result string) {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncTransition counts a completed order status transition.
func (m *OrderMetrics) IncTransition(to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}
