package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
)

// orderPayload is the wire shape of an order. Totals travel as JSON numbers.
type orderPayload struct {
	ID                 string  `json:"id"`
	CustomerName       string  `json:"customer_name"`
	Product            string  `json:"product"`
	Total              float64 `json:"total"`
	Status             string  `json:"status"`
	PaymentMethod      string  `json:"payment_method"`
	Commission         float64 `json:"commission"`
	Timestamp          int64   `json:"timestamp"`
	PaymentProcessedAt int64   `json:"payment_processed_at,omitempty"`
}

func toOrderPayload(o *order.Order) orderPayload {
	return orderPayload{
		ID:                 o.ID,
		CustomerName:       o.CustomerName,
		Product:            o.Product,
		Total:              o.Total.InexactFloat64(),
		Status:             string(o.Status),
		PaymentMethod:      o.PaymentMethod,
		Commission:         o.Commission.InexactFloat64(),
		Timestamp:          o.CreatedAt,
		PaymentProcessedAt: o.PaymentProcessedAt,
	}
}

type orderWriteRequest struct {
	CustomerName string  `json:"customer_name"`
	Product      string  `json:"product"`
	Total        float64 `json:"total"`
	Status       string  `json:"status,omitempty"`
}

// ListOrders returns the merchant's orders, newest first. The optional status
// query parameter filters by lifecycle state; "all" disables filtering.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")
	statusFilter := r.URL.Query().Get("status")

	orders, err := h.orders.List(r.Context(), merchantID, statusFilter)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	payload := make([]orderPayload, len(orders))
	for i := range orders {
		payload[i] = toOrderPayload(&orders[i])
	}
	writeJSON(w, http.StatusOK, payload)
}

type createOrderResponse struct {
	Success bool         `json:"success"`
	Order   orderPayload `json:"order"`
}

// CreateOrder creates a pending order and starts simulated payment
// processing for it.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Create(r.Context(), chi.URLParam(r, "merchantID"), order.CreateRequest{
		CustomerName: req.CustomerName,
		Product:      req.Product,
		Total:        decimal.NewFromFloat(req.Total),
	})
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, createOrderResponse{Success: true, Order: toOrderPayload(o)})
}

// GetOrder returns a single order for edit pre-fill.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "merchantID"), chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderPayload(o))
}

// UpdateOrder rewrites the editable fields of an order.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.orders.Update(r.Context(), chi.URLParam(r, "merchantID"), chi.URLParam(r, "orderID"),
		order.UpdateRequest{
			CustomerName: req.CustomerName,
			Product:      req.Product,
			Total:        decimal.NewFromFloat(req.Total),
			Status:       order.Status(req.Status),
		})
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeSuccess(w, "Order updated")
}

// DeleteOrder removes an order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	err := h.orders.Delete(r.Context(), chi.URLParam(r, "merchantID"), chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeSuccess(w, "Order deleted")
}

// SimulatePayment re-submits an order to the asynchronous payment processor.
func (h *Handler) SimulatePayment(w http.ResponseWriter, r *http.Request) {
	err := h.orders.SimulatePayment(r.Context(), chi.URLParam(r, "merchantID"), chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeSuccess(w, "Payment simulation started")
}
