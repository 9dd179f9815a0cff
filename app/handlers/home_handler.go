package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HomeHandler struct {
	resp   *Responder
	db     Pinger
	appURL string
	log    *zap.Logger
}

func NewHomeHandler(resp *Responder, db Pinger, appURL string, log *zap.Logger) *HomeHandler {
	return &HomeHandler{
		resp:   resp,
		db:     db,
		appURL: appURL,
		log:    log,
	}
}

func (h *HomeHandler) APIInfo(w http.ResponseWriter, r *http.Request) {
	h.resp.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Storefront API",
		"url":     h.appURL,
		"endpoints": map[string]interface{}{
			"auth": map[string]string{
				"register": "/api/auth/register",
				"login":    "/api/auth/login",
				"refresh":  "/api/auth/token/refresh",
				"me":       "/api/auth/me",
			},
			"products": map[string]string{
				"list":       "/api/products",
				"categories": "/api/products/categories",
				"featured":   "/api/products/featured",
				"mine":       "/api/products/mine",
			},
			"cart": map[string]string{
				"detail": "/api/cart",
				"add":    "/api/cart/add",
				"clear":  "/api/cart/clear",
			},
			"purchases": map[string]string{
				"history":               "/api/purchases/history",
				"create":                "/api/purchases/create",
				"create_payment_intent": "/api/purchases/create-payment-intent",
			},
		},
	})
}

func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			h.resp.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.resp.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
