package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, merchant_id, customer_name, product, total, status,
	payment_method, commission, created_at, payment_processed_at`

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o           order.Order
		processedAt sql.NullInt64
	)
	err := row.Scan(
		&o.ID, &o.MerchantID, &o.CustomerName, &o.Product, &o.Total, &o.Status,
		&o.PaymentMethod, &o.Commission, &o.CreatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	o.PaymentProcessedAt = processedAt.Int64
	return &o, nil
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, merchant_id, customer_name, product, total, status,
			payment_method, commission, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.MerchantID, o.CustomerName, o.Product, o.Total, o.Status,
		o.PaymentMethod, o.Commission, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// Get returns a single order scoped to its merchant.
func (r *OrderRepository) Get(ctx context.Context, merchantID, orderID string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE merchant_id = $1 AND id = $2`,
		merchantID, orderID,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}
	return o, nil
}

// List returns all of the merchant's orders, newest first.
func (r *OrderRepository) List(ctx context.Context, merchantID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE merchant_id = $1 ORDER BY created_at DESC`,
		merchantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// Update rewrites the editable fields of an order.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET customer_name = $3, product = $4, total = $5, status = $6
		WHERE merchant_id = $1 AND id = $2`,
		o.MerchantID, o.ID, o.CustomerName, o.Product, o.Total, o.Status,
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateStatus flips the order's status and records when payment processing
// finished.
func (r *OrderRepository) UpdateStatus(ctx context.Context, merchantID, orderID string, status order.Status, processedAt int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $3, payment_processed_at = $4
		WHERE merchant_id = $1 AND id = $2`,
		merchantID, orderID, status, processedAt,
	)
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(ctx context.Context, merchantID, orderID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM orders WHERE merchant_id = $1 AND id = $2`,
		merchantID, orderID,
	)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}
