package payment

import (
	"context"
	"fmt"
)

// Service encapsulates payment settings business logic.
type Service struct {
	settings Repository
}

// NewService creates a payment settings Service.
func NewService(settings Repository) *Service {
	return &Service{settings: settings}
}

// Get returns the merchant's settings, or ErrNoSettings when none exist.
func (s *Service) Get(ctx context.Context, merchantID string) (*Settings, error) {
	cfg, err := s.settings.Get(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save validates and persists the merchant's settings. Fields that do not
// belong to the selected method are cleared before storage so switching
// methods never leaves stale secrets behind. A zero commission rate is
// replaced with the default.
func (s *Service) Save(ctx context.Context, cfg *Settings) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	schema := methodSchemas[cfg.Method]
	keep := make(map[string]bool, len(schema.RequiredFields)+1)
	for _, f := range schema.RequiredFields {
		keep[f] = true
	}
	if len(schema.Providers) > 0 {
		keep["provider"] = true
	}
	for _, f := range allFields {
		if !keep[f] {
			cfg.SetField(f, "")
		}
	}

	if cfg.CommissionRate.IsZero() {
		cfg.CommissionRate = DefaultCommissionRate
	}

	if err := s.settings.Save(ctx, cfg); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// allFields lists every method-specific field across all schemas.
var allFields = []string{
	"label", "provider",
	"phone_number",
	"card_number", "expiry", "cvv",
	"account_number", "bank_name", "branch_code",
}
