package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/ghala-dashboard/internal/domain/payment"
)

// settingsPayload is the wire shape of payment settings. Only the fields
// relevant to the selected method are present.
type settingsPayload struct {
	Method         string  `json:"method"`
	Label          string  `json:"label"`
	Provider       string  `json:"provider,omitempty"`
	PhoneNumber    string  `json:"phone_number,omitempty"`
	CardNumber     string  `json:"card_number,omitempty"`
	Expiry         string  `json:"expiry,omitempty"`
	CVV            string  `json:"cvv,omitempty"`
	AccountNumber  string  `json:"account_number,omitempty"`
	BankName       string  `json:"bank_name,omitempty"`
	BranchCode     string  `json:"branch_code,omitempty"`
	CommissionRate float64 `json:"commission_rate,omitempty"`
}

func toSettingsPayload(s *payment.Settings) settingsPayload {
	return settingsPayload{
		Method:         string(s.Method),
		Label:          s.Label,
		Provider:       s.Provider,
		PhoneNumber:    s.PhoneNumber,
		CardNumber:     s.CardNumber,
		Expiry:         s.Expiry,
		CVV:            s.CVV,
		AccountNumber:  s.AccountNumber,
		BankName:       s.BankName,
		BranchCode:     s.BranchCode,
		CommissionRate: s.CommissionRate.InexactFloat64(),
	}
}

// PaymentMethods serves the static method schema table so clients can build
// their configuration forms.
func (h *Handler) PaymentMethods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, payment.Schemas())
}

// GetSettings returns the merchant's payment settings. An unconfigured
// merchant gets an empty object, matching what form clients expect.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.payments.Get(r.Context(), chi.URLParam(r, "merchantID"))
	if err != nil {
		if errors.Is(err, payment.ErrNoSettings) {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeSettingsError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsPayload(s))
}

// SaveSettings validates and upserts the merchant's payment settings.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := &payment.Settings{
		MerchantID:     chi.URLParam(r, "merchantID"),
		Method:         payment.Method(req.Method),
		Label:          req.Label,
		Provider:       req.Provider,
		PhoneNumber:    req.PhoneNumber,
		CardNumber:     req.CardNumber,
		Expiry:         req.Expiry,
		CVV:            req.CVV,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		BranchCode:     req.BranchCode,
		CommissionRate: decimal.NewFromFloat(req.CommissionRate),
	}
	if err := h.payments.Save(r.Context(), s); err != nil {
		writeSettingsError(w, r, err)
		return
	}
	writeSuccess(w, "Payment method updated")
}
