package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/routes"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/catalog"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/checkout"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/fulfillment"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/notifications"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/notify"
	internalorders "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/orders"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/payments"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/realtime"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/internal/stats"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/gateway"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/metrics"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/migrate"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/pubsub"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/redis"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/verification"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pubsub client", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	broadcaster, err := realtime.NewBroadcaster(pubsubClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create broadcaster", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	dispatcher, err := notify.NewDispatcher(
		notificationsRepo,
		logg,
		notify.NewEmailTransport(cfg.Notify, logg),
		notify.NewSMSTransport(cfg.Notify, logg),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	splitter, err := checkout.NewSplitter(catalog.NewRepository(dbClient.DB()), cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout splitter", err)
		os.Exit(1)
	}

	statsRecorder, err := stats.NewRecorder(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create stats recorder", err)
		os.Exit(1)
	}

	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	ordersRepo := internalorders.NewRepository(dbClient.DB())
	deliveryCodes := verification.NewStore(redisClient, 24*time.Hour)

	paymentsService, err := payments.NewService(dbClient, payments.NewRepository(dbClient.DB()), ordersRepo, gatewayClient, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(fulfillment.Params{
		Tx:          dbClient,
		Splitter:    splitter,
		Orders:      ordersRepo,
		Stats:       statsRecorder,
		Refunds:     paymentsService,
		Notifier:    dispatcher,
		Broadcaster: broadcaster,
		Codes:       deliveryCodes,
		Metrics:     orderMetrics,
		Logger:      logg,
		Checkout:    cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Fulfillment:   fulfillmentService,
			Payments:      paymentsService,
			Notifications: notificationsService,
			Orders:        ordersRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
