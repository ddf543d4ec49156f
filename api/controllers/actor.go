package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/api/middleware"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
)

func actorIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}
