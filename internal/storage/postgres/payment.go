package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/ghala-dashboard/internal/domain/payment"
)

var _ payment.Repository = (*PaymentRepository)(nil)

// PaymentRepository implements payment.Repository backed by PostgreSQL.
// Each merchant owns at most one settings row; Save upserts it.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a PaymentRepository that uses the given pool.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Get returns the merchant's settings, or payment.ErrNoSettings.
func (r *PaymentRepository) Get(ctx context.Context, merchantID string) (*payment.Settings, error) {
	var s payment.Settings
	err := r.pool.QueryRow(ctx, `
		SELECT merchant_id, method, label, provider, phone_number,
			card_number, expiry, cvv, account_number, bank_name, branch_code,
			commission_rate
		FROM payment_settings WHERE merchant_id = $1`,
		merchantID,
	).Scan(
		&s.MerchantID, &s.Method, &s.Label, &s.Provider, &s.PhoneNumber,
		&s.CardNumber, &s.Expiry, &s.CVV, &s.AccountNumber, &s.BankName, &s.BranchCode,
		&s.CommissionRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNoSettings
		}
		return nil, fmt.Errorf("getting settings for %q: %w", merchantID, err)
	}
	return &s, nil
}

// Save upserts the merchant's settings row.
func (r *PaymentRepository) Save(ctx context.Context, s *payment.Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_settings (merchant_id, method, label, provider,
			phone_number, card_number, expiry, cvv,
			account_number, bank_name, branch_code, commission_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (merchant_id) DO UPDATE SET
			method = EXCLUDED.method,
			label = EXCLUDED.label,
			provider = EXCLUDED.provider,
			phone_number = EXCLUDED.phone_number,
			card_number = EXCLUDED.card_number,
			expiry = EXCLUDED.expiry,
			cvv = EXCLUDED.cvv,
			account_number = EXCLUDED.account_number,
			bank_name = EXCLUDED.bank_name,
			branch_code = EXCLUDED.branch_code,
			commission_rate = EXCLUDED.commission_rate,
			updated_at = now()`,
		s.MerchantID, s.Method, s.Label, s.Provider,
		s.PhoneNumber, s.CardNumber, s.Expiry, s.CVV,
		s.AccountNumber, s.BankName, s.BranchCode, s.CommissionRate,
	)
	if err != nil {
		return fmt.Errorf("saving settings for %q: %w", s.MerchantID, err)
	}
	return nil
}
