package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/controllers"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/middleware"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/notifications"
	internalorders "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orders"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/payments"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/enums"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	pkgredis "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil entries disable the
// middleware or routes that depend on them.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *pkgredis.Client
	Fulfillment   fulfillment.Service
	Payments      payments.Service
	Notifications notifications.Service
	Orders        internalorders.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	writePolicy := middleware.NewRateLimitPolicy(
		"api-write",
		cfg.RateLimit.Window,
		cfg.RateLimit.Limit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))
		r.Use(middleware.RateLimit(writePolicy, deps.Redis, logg))

		r.Post("/checkout", controllers.Checkout(deps.Fulfillment, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/{orderID}/history", controllers.OrderHistory(deps.Orders, logg))
			r.With(middleware.RequireRole(string(enums.RoleSeller), logg)).
				Post("/{orderID}/status", controllers.AdvanceOrderStatus(deps.Fulfillment, deps.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(deps.Fulfillment, deps.Orders, logg))
			r.Post("/{orderID}/return", controllers.RequestReturn(deps.Fulfillment, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/intent", controllers.CreatePaymentIntent(deps.Payments, logg))
			r.Post("/verify", controllers.VerifyPayment(deps.Payments, logg))
			r.With(middleware.RequireRole(string(enums.RoleSeller), logg)).
				Post("/{paymentID}/refund", controllers.RefundPayment(deps.Fulfillment, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
