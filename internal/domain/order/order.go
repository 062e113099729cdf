package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. New orders start out pending and
// transition to paid or failed once payment processing completes.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// Order is a purchase record owned by a merchant.
type Order struct {
	ID                 string          `json:"id"`
	MerchantID         string          `json:"-"`
	CustomerName       string          `json:"customer_name"`
	Product            string          `json:"product"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	PaymentMethod      string          `json:"payment_method"`
	Commission         decimal.Decimal `json:"commission"`
	CreatedAt          int64           `json:"timestamp"`
	PaymentProcessedAt int64           `json:"payment_processed_at,omitempty"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, merchantID, orderID string) (*Order, error)
	// List returns all orders for the merchant, newest first.
	List(ctx context.Context, merchantID string) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, merchantID, orderID string, status Status, processedAt int64) error
	Delete(ctx context.Context, merchantID, orderID string) error
}
