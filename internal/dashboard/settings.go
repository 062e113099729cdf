package dashboard

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// SettingsForm models the payment configuration form. The visible field set
// is derived from the method schema fetched from the server, so the form and
// the backend never disagree on which fields a method needs.
type SettingsForm struct {
	client  *Client
	schemas map[string]MethodSchema

	method string
	values map[string]string

	commissionRate float64
}

// NewSettingsForm fetches the method schema table and returns an empty form.
func NewSettingsForm(ctx context.Context, client *Client) (*SettingsForm, error) {
	schemas, err := client.PaymentMethods(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch payment method schemas")
	}
	return &SettingsForm{
		client:  client,
		schemas: schemas,
		values:  make(map[string]string),
	}, nil
}

// Methods lists the configurable payment methods in a stable order.
func (f *SettingsForm) Methods() []string {
	out := make([]string, 0, len(f.schemas))
	for _, m := range []string{"mobile", "card", "bank"} {
		if _, ok := f.schemas[m]; ok {
			out = append(out, m)
		}
	}
	// Any methods the server added beyond the known three go last.
	for m := range f.schemas {
		if m != "mobile" && m != "card" && m != "bank" {
			out = append(out, m)
		}
	}
	return out
}

// Method returns the currently selected method, empty when none.
func (f *SettingsForm) Method() string { return f.method }

// Fields returns the field names the selected method requires, in render
// order. Empty when no method is selected.
func (f *SettingsForm) Fields() []string {
	return f.schemas[f.method].RequiredFields
}

// Providers returns the provider choices for the selected method, if any.
func (f *SettingsForm) Providers() []string {
	return f.schemas[f.method].Providers
}

// SetMethod switches the selected method and regenerates the field set.
// Values for fields not present in the new method's schema are discarded.
func (f *SettingsForm) SetMethod(method string) error {
	schema, ok := f.schemas[method]
	if !ok {
		return errors.Errorf("unknown payment method %q", method)
	}

	keep := make(map[string]struct{}, len(schema.RequiredFields))
	for _, name := range schema.RequiredFields {
		keep[name] = struct{}{}
	}
	for name := range f.values {
		if _, ok := keep[name]; !ok {
			delete(f.values, name)
		}
	}
	f.method = method
	return nil
}

// SetField records a field value. Fields outside the selected method's
// schema are ignored, so stale inputs cannot leak into the payload.
func (f *SettingsForm) SetField(name, value string) {
	for _, field := range f.Fields() {
		if field == name {
			f.values[name] = value
			return
		}
	}
}

// FieldValue reads a field's current value.
func (f *SettingsForm) FieldValue(name string) string {
	return f.values[name]
}

// SetCommissionRate records the commission rate to submit. Zero lets the
// server apply its default.
func (f *SettingsForm) SetCommissionRate(rate float64) {
	f.commissionRate = rate
}

// Load fetches the merchant's saved settings and repopulates the form. A
// merchant with no configuration leaves the form empty.
func (f *SettingsForm) Load(ctx context.Context, merchantID string) error {
	s, err := f.client.GetSettings(ctx, merchantID)
	if err != nil {
		return err
	}
	if s.Method == "" {
		return nil
	}
	if err := f.SetMethod(s.Method); err != nil {
		return err
	}

	for _, name := range f.Fields() {
		f.values[name] = settingsField(s, name)
	}
	f.commissionRate = s.CommissionRate
	return nil
}

// Save serializes exactly the selected method's fields and submits them.
// Emptiness is not checked here: the server validates and its message is
// surfaced through the returned error.
func (f *SettingsForm) Save(ctx context.Context, merchantID string) error {
	if f.method == "" {
		return errors.New("no payment method selected")
	}

	s := Settings{Method: f.method, CommissionRate: f.commissionRate}
	for _, name := range f.Fields() {
		setSettingsField(&s, name, f.values[name])
	}
	return f.client.SaveSettings(ctx, merchantID, s)
}

// MaskedView returns the current form state with the card number reduced to
// its last four digits and the CVV fully masked, for read-only display.
func (f *SettingsForm) MaskedView() map[string]string {
	out := make(map[string]string, len(f.values))
	for name, v := range f.values {
		switch name {
		case "card_number":
			if v != "" {
				last4 := v
				if len(last4) > 4 {
					last4 = last4[len(last4)-4:]
				}
				v = strings.Repeat("*", 12) + last4
			}
		case "cvv":
			v = strings.Repeat("*", len(v))
		}
		out[name] = v
	}
	return out
}

func settingsField(s *Settings, name string) string {
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

func setSettingsField(s *Settings, name, value string) {
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
