package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/ghala-dashboard/internal/domain/payment"
)

// Sentinel errors for order operations.
var (
	ErrNotFound      = fmt.Errorf("order not found")
	ErrNegativeTotal = fmt.Errorf("total must not be negative")
)

// InvalidStatusError indicates an update carried a status outside the
// pending/paid/failed set.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Status)
}

// Processor accepts orders for asynchronous payment processing.
type Processor interface {
	Enqueue(merchantID, orderID string)
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	CustomerName string
	Product      string
	Total        decimal.Decimal
}

// UpdateRequest holds the editable fields of an existing order.
type UpdateRequest struct {
	CustomerName string
	Product      string
	Total        decimal.Decimal
	Status       Status
}

// Service encapsulates order lifecycle business logic.
type Service struct {
	orders    Repository
	payments  payment.Repository
	processor Processor
	now       func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, payments payment.Repository, processor Processor) *Service {
	return &Service{
		orders:    orders,
		payments:  payments,
		processor: processor,
		now:       time.Now,
	}
}

// Create persists a new pending order and hands it to the payment processor.
// The payment method and commission are snapshotted from the merchant's
// current settings; merchants without settings fall back to mobile at the
// default commission rate.
func (s *Service) Create(ctx context.Context, merchantID string, req CreateRequest) (*Order, error) {
	if req.Total.IsNegative() {
		return nil, ErrNegativeTotal
	}

	method := string(payment.MethodMobile)
	rate := payment.DefaultCommissionRate
	cfg, err := s.payments.Get(ctx, merchantID)
	switch {
	case err == nil:
		method = string(cfg.Method)
		rate = cfg.CommissionRate
	case errors.Is(err, payment.ErrNoSettings):
		// keep defaults
	default:
		return nil, fmt.Errorf("get merchant settings: %w", err)
	}

	customer := req.CustomerName
	if customer == "" {
		customer = "Anonymous"
	}
	product := req.Product
	if product == "" {
		product = "Unknown Product"
	}

	o := &Order{
		ID:            uuid.New().String(),
		MerchantID:    merchantID,
		CustomerName:  customer,
		Product:       product,
		Total:         req.Total.Round(2),
		Status:        StatusPending,
		PaymentMethod: method,
		Commission:    req.Total.Mul(rate).Div(decimal.NewFromInt(100)).Round(2),
		CreatedAt:     s.now().Unix(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.processor.Enqueue(merchantID, o.ID)
	return o, nil
}

// Get returns a single order for edit pre-fill.
func (s *Service) Get(ctx context.Context, merchantID, orderID string) (*Order, error) {
	return s.orders.Get(ctx, merchantID, orderID)
}

// List returns all orders for the merchant, newest first, optionally filtered
// by status. The filter "all" (or empty) disables filtering; unknown statuses
// simply match nothing.
func (s *Service) List(ctx context.Context, merchantID, statusFilter string) ([]Order, error) {
	all, err := s.orders.List(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if statusFilter == "" || statusFilter == "all" {
		return all, nil
	}

	filtered := make([]Order, 0, len(all))
	for _, o := range all {
		if string(o.Status) == statusFilter {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// Update rewrites the editable fields of an existing order.
func (s *Service) Update(ctx context.Context, merchantID, orderID string, req UpdateRequest) error {
	if req.Total.IsNegative() {
		return ErrNegativeTotal
	}
	if !req.Status.Valid() {
		return &InvalidStatusError{Status: string(req.Status)}
	}

	o, err := s.orders.Get(ctx, merchantID, orderID)
	if err != nil {
		return err
	}

	o.CustomerName = req.CustomerName
	o.Product = req.Product
	o.Total = req.Total.Round(2)
	o.Status = req.Status

	if err := s.orders.Update(ctx, o); err != nil {
		return fmt.Errorf("update order %q: %w", orderID, err)
	}
	return nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, merchantID, orderID string) error {
	return s.orders.Delete(ctx, merchantID, orderID)
}

// SimulatePayment re-submits an existing order to the payment processor. The
// transition to paid or failed happens asynchronously; callers observe it by
// re-fetching or via the order events stream.
func (s *Service) SimulatePayment(ctx context.Context, merchantID, orderID string) error {
	if _, err := s.orders.Get(ctx, merchantID, orderID); err != nil {
		return err
	}
	s.processor.Enqueue(merchantID, orderID)
	return nil
}
