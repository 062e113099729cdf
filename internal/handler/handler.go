// Package handler exposes the dashboard REST API over chi. It translates
// between the JSON wire shapes the dashboard clients consume and the domain
// services, and maps domain errors onto HTTP status codes.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/ghala-dashboard/internal/domain/analytics"
	"github.com/xenking/ghala-dashboard/internal/domain/auth"
	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/domain/payment"
	"github.com/xenking/ghala-dashboard/internal/notify"
)

// Handler implements the dashboard API, delegating business logic to the
// domain services.
type Handler struct {
	auth      *auth.Service
	orders    *order.Service
	payments  *payment.Service
	analytics *analytics.Service
	hub       *notify.Hub
}

// New constructs a Handler with the required domain dependencies.
func New(
	authSvc *auth.Service,
	orders *order.Service,
	payments *payment.Service,
	analyticsSvc *analytics.Service,
	hub *notify.Hub,
) *Handler {
	return &Handler{
		auth:      authSvc,
		orders:    orders,
		payments:  payments,
		analytics: analyticsSvc,
		hub:       hub,
	}
}

// Router builds the chi router serving the API under /api.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/payment-methods", h.PaymentMethods)

		// Everything below requires a bearer token tied to the merchant in
		// the path (admins may reach any merchant).
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Post("/logout", h.Logout)

			r.Get("/orders/{merchantID}", h.ListOrders)
			r.Post("/order/{merchantID}", h.CreateOrder)
			r.Get("/order/{merchantID}/{orderID}", h.GetOrder)
			r.Put("/order/{merchantID}/{orderID}", h.UpdateOrder)
			r.Delete("/order/{merchantID}/{orderID}", h.DeleteOrder)
			r.Post("/simulate-payment/{merchantID}/{orderID}", h.SimulatePayment)

			r.Get("/merchant/{merchantID}", h.GetSettings)
			r.Post("/merchant/{merchantID}", h.SaveSettings)

			r.Get("/analytics/orders/{merchantID}", h.OrderAnalytics)
			r.Get("/analytics/payment-methods/{merchantID}", h.MethodAnalytics)
			r.Get("/analytics/status-distribution/{merchantID}", h.StatusAnalytics)
			r.Get("/analytics/summary/{merchantID}", h.AnalyticsSummary)

			r.Get("/ws/orders/{merchantID}", h.OrderEvents)
		})
	})

	return r
}

// OrderEvents streams the merchant's order-status transitions over WebSocket.
func (h *Handler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(r.Context(), w, r, chi.URLParam(r, "merchantID"))
}
