package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Method enumerates the supported payment channels.
type Method string

const (
	MethodMobile Method = "mobile"
	MethodCard   Method = "card"
	MethodBank   Method = "bank"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodMobile, MethodCard, MethodBank:
		return true
	}
	return false
}

// Methods lists all supported payment methods in display order.
func Methods() []Method {
	return []Method{MethodMobile, MethodCard, MethodBank}
}

// ErrNoSettings is returned when a merchant has not configured a payment method.
var ErrNoSettings = fmt.Errorf("payment settings not configured")

// UnknownMethodError indicates a settings record referenced a method that is
// not part of the schema.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown payment method %q", e.Method)
}

// MissingFieldError indicates a required field for the selected method was
// empty on save.
type MissingFieldError struct {
	Method Method
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %s is required for method %s", e.Field, e.Method)
}

// Settings is the single payment configuration record a merchant owns.
// Only the fields relevant to Method carry values; the rest stay empty.
type Settings struct {
	MerchantID string `json:"-"`

	Method   Method `json:"method"`
	Label    string `json:"label"`
	Provider string `json:"provider,omitempty"`

	PhoneNumber string `json:"phone_number,omitempty"`

	CardNumber string `json:"card_number,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`

	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	BranchCode    string `json:"branch_code,omitempty"`

	CommissionRate decimal.Decimal `json:"commission_rate"`
}

// DefaultCommissionRate is applied when a merchant saves settings without an
// explicit rate, matching the backend's historical default of 2.5%.
var DefaultCommissionRate = decimal.RequireFromString("2.5")

// Field reads a method-specific field by its wire name.
func (s *Settings) Field(name string) string {
	switch name {
	case "label":
		return s.Label
	case "provider":
		return s.Provider
	case "phone_number":
		return s.PhoneNumber
	case "card_number":
		return s.CardNumber
	case "expiry":
		return s.Expiry
	case "cvv":
		return s.CVV
	case "account_number":
		return s.AccountNumber
	case "bank_name":
		return s.BankName
	case "branch_code":
		return s.BranchCode
	}
	return ""
}

// SetField writes a method-specific field by its wire name. Unknown names are
// ignored so stale client payloads cannot corrupt the record.
func (s *Settings) SetField(name, value string) {
	switch name {
	case "label":
		s.Label = value
	case "provider":
		s.Provider = value
	case "phone_number":
		s.PhoneNumber = value
	case "card_number":
		s.CardNumber = value
	case "expiry":
		s.Expiry = value
	case "cvv":
		s.CVV = value
	case "account_number":
		s.AccountNumber = value
	case "bank_name":
		s.BankName = value
	case "branch_code":
		s.BranchCode = value
	}
}

// Masked returns a copy safe for display: the card number keeps only its last
// four digits and the CVV is fully masked. Stored values are never masked.
func (s Settings) Masked() Settings {
	if s.CardNumber != "" {
		last4 := s.CardNumber
		if len(last4) > 4 {
			last4 = last4[len(last4)-4:]
		}
		s.CardNumber = strings.Repeat("*", 12) + last4
	}
	if s.CVV != "" {
		s.CVV = strings.Repeat("*", len(s.CVV))
	}
	return s
}

// Repository defines persistence operations for payment settings.
type Repository interface {
	// Get returns the settings for the merchant, or ErrNoSettings.
	Get(ctx context.Context, merchantID string) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}
