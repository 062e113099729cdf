package payment

// MethodSchema describes the form fields a payment method requires and, where
// applicable, the providers a merchant can choose from. The field order is the
// order forms should render them in.
type MethodSchema struct {
	RequiredFields []string `json:"required_fields"`
	Providers      []string `json:"providers,omitempty"`
}

// methodSchemas is the static per-method field table. It mirrors what the
// configuration endpoint serves to clients.
var methodSchemas = map[Method]MethodSchema{
	MethodMobile: {
		RequiredFields: []string{"label", "provider", "phone_number"},
		Providers:      []string{"MTN", "Airtel", "Zamtel"},
	},
	MethodCard: {
		RequiredFields: []string{"label", "card_number", "expiry", "cvv"},
		Providers:      []string{"Visa", "Mastercard", "American Express"},
	},
	MethodBank: {
		RequiredFields: []string{"label", "account_number", "bank_name", "branch_code"},
		Providers:      []string{"ZANACO", "Stanbic", "Absa", "FNB"},
	},
}

// SchemaFor returns the field schema for the given method.
func SchemaFor(m Method) (MethodSchema, bool) {
	s, ok := methodSchemas[m]
	return s, ok
}

// Schemas returns the full method schema table keyed by method name, in the
// shape the /payment-methods endpoint serves.
func Schemas() map[Method]MethodSchema {
	out := make(map[Method]MethodSchema, len(methodSchemas))
	for m, s := range methodSchemas {
		out[m] = s
	}
	return out
}

// Validate checks that every required field for the selected method is
// non-empty. Validation happens server-side only; clients submit unchecked.
func Validate(s *Settings) error {
	schema, ok := methodSchemas[s.Method]
	if !ok {
		return &UnknownMethodError{Method: string(s.Method)}
	}
	for _, f := range schema.RequiredFields {
		if s.Field(f) == "" {
			return &MissingFieldError{Method: s.Method, Field: f}
		}
	}
	return nil
}
