package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/ghala-dashboard/internal/domain/analytics"
)

// daysParam parses the ?days=N window, falling back to the default on
// missing or unusable values.
func daysParam(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return analytics.DefaultDays
	}
	return days
}

// OrderAnalytics serves the day-bucketed order/revenue time series.
func (h *Handler) OrderAnalytics(w http.ResponseWriter, r *http.Request) {
	series, err := h.analytics.Daily(r.Context(), chi.URLParam(r, "merchantID"), daysParam(r))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	var e jx.Encoder
	analytics.EncodeSeries(&e, series)
	writeRaw(w, http.StatusOK, e.Bytes())
}

// MethodAnalytics serves the payment-method distribution.
func (h *Handler) MethodAnalytics(w http.ResponseWriter, r *http.Request) {
	dist, err := h.analytics.Methods(r.Context(), chi.URLParam(r, "merchantID"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	var e jx.Encoder
	analytics.EncodeDistribution(&e, dist, analytics.MethodKeys)
	writeRaw(w, http.StatusOK, e.Bytes())
}

// StatusAnalytics serves the order-status distribution.
func (h *Handler) StatusAnalytics(w http.ResponseWriter, r *http.Request) {
	dist, err := h.analytics.Statuses(r.Context(), chi.URLParam(r, "merchantID"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	var e jx.Encoder
	analytics.EncodeDistribution(&e, dist, analytics.StatusKeys)
	writeRaw(w, http.StatusOK, e.Bytes())
}

// AnalyticsSummary serves every analytics shape in one response.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summarize(r.Context(), chi.URLParam(r, "merchantID"), daysParam(r))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	var e jx.Encoder
	analytics.EncodeSummary(&e, summary)
	writeRaw(w, http.StatusOK, e.Bytes())
}
