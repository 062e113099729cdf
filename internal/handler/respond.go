package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/domain/payment"
)

// statusMessage is the {success, message} envelope mutation endpoints return.
type statusMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, statusMessage{Success: true, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, statusMessage{Success: false, Message: message})
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeOrderError maps domain order errors to HTTP responses; unexpected
// errors become opaque 500s after logging.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var invStatus *order.InvalidStatusError
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrNegativeTotal):
		writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invStatus):
		writeFailure(w, http.StatusBadRequest, invStatus.Error())
	default:
		zctx.From(r.Context()).Error("order request failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}

// writeSettingsError maps payment settings errors to HTTP responses.
func writeSettingsError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unknownMethod *payment.UnknownMethodError
		missingField  *payment.MissingFieldError
	)
	switch {
	case errors.As(err, &unknownMethod):
		writeFailure(w, http.StatusBadRequest, unknownMethod.Error())
	case errors.As(err, &missingField):
		writeFailure(w, http.StatusUnprocessableEntity, missingField.Error())
	default:
		zctx.From(r.Context()).Error("settings request failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}
