package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/responses"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/db"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
	pkgredis "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/redis"
)

const readyCheckTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SellerHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports per-check status.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SellerHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				checks["database"] = "down"
				healthy = false
				logError(ctx, logg, "database ping failed", err)
			} else {
				checks["database"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
				logError(ctx, logg, "redis ping failed", err)
			} else {
				checks["redis"] = "up"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, checks)
	}
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
