package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// recentLimit is how many orders the truncated "recent" table shows.
const recentLimit = 5

// DefaultReloadDelay is how long SimulatePayment waits before re-fetching
// when no push channel is available. The backend settles payments after a few
// seconds, so a single delayed reload usually observes the final status.
const DefaultReloadDelay = 6 * time.Second

// OrderSummary is the derived view of a merchant's order list.
type OrderSummary struct {
	Total   int
	Paid    int
	Failed  int
	Revenue decimal.Decimal

	// Orders is the full list, newest first. Recent is the first recentLimit
	// entries of Orders.
	Orders []Order
	Recent []Order
}

// Summarize sorts orders newest-first and derives the dashboard counters.
// Revenue sums totals over paid orders only. Unknown status values count
// toward Total but neither Paid nor Failed.
func Summarize(orders []Order) OrderSummary {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	s := OrderSummary{
		Total:   len(sorted),
		Revenue: decimal.Zero,
		Orders:  sorted,
		Recent:  sorted,
	}
	if len(s.Recent) > recentLimit {
		s.Recent = s.Recent[:recentLimit]
	}

	for i := range sorted {
		switch sorted[i].Status {
		case "paid":
			s.Paid++
			s.Revenue = s.Revenue.Add(decimal.NewFromFloat(sorted[i].Total))
		case "failed":
			s.Failed++
		}
	}
	return s
}

// Orders is the order view-model: it loads and summarizes the list, and runs
// the mutate-then-reload cycle for every order operation.
type Orders struct {
	client *Client
	lg     *zap.Logger

	// ReloadDelay is the wait before the post-simulation re-fetch.
	ReloadDelay time.Duration

	// onReload, when set, runs after every successful mutation so the owner
	// can refresh dependent views (analytics).
	onReload func(ctx context.Context)
}

// NewOrders creates the order view-model. onReload may be nil.
func NewOrders(client *Client, lg *zap.Logger, onReload func(ctx context.Context)) *Orders {
	return &Orders{
		client:      client,
		lg:          lg,
		ReloadDelay: DefaultReloadDelay,
		onReload:    onReload,
	}
}

// Load fetches the merchant's orders and derives the summary. An empty list
// yields zero counters and empty tables.
func (o *Orders) Load(ctx context.Context, merchantID string) (OrderSummary, error) {
	orders, err := o.client.Orders(ctx, merchantID)
	if err != nil {
		return OrderSummary{}, err
	}
	return Summarize(orders), nil
}

func (o *Orders) reload(ctx context.Context) {
	if o.onReload != nil {
		o.onReload(ctx)
	}
}

// Create creates an order, then triggers a reload.
func (o *Orders) Create(ctx context.Context, merchantID string, draft OrderDraft) (*Order, error) {
	created, err := o.client.CreateOrder(ctx, merchantID, draft)
	if err != nil {
		return nil, err
	}
	o.reload(ctx)
	return created, nil
}

// Get fetches a single order for edit pre-fill.
func (o *Orders) Get(ctx context.Context, merchantID, orderID string) (*Order, error) {
	return o.client.GetOrder(ctx, merchantID, orderID)
}

// Update rewrites an order, then triggers a reload.
func (o *Orders) Update(ctx context.Context, merchantID, orderID string, draft OrderDraft) error {
	if err := o.client.UpdateOrder(ctx, merchantID, orderID, draft); err != nil {
		return err
	}
	o.reload(ctx)
	return nil
}

// Delete removes an order, then triggers a reload.
func (o *Orders) Delete(ctx context.Context, merchantID, orderID string) error {
	if err := o.client.DeleteOrder(ctx, merchantID, orderID); err != nil {
		return err
	}
	o.reload(ctx)
	return nil
}

// SimulatePayment starts asynchronous payment processing for the order and
// schedules one delayed reload after ReloadDelay. The reload goroutine is
// tied to ctx, so a logout or merchant switch cancels it before it can
// repaint stale data.
func (o *Orders) SimulatePayment(ctx context.Context, merchantID, orderID string) error {
	if err := o.client.SimulatePayment(ctx, merchantID, orderID); err != nil {
		return err
	}

	go func() {
		timer := time.NewTimer(o.ReloadDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			o.reload(ctx)
		}
	}()
	return nil
}

// WaitSettled polls the order with doubling backoff until its status leaves
// pending, the deadline passes, or ctx is cancelled. It is the alternative to
// the fixed delayed reload for callers that want the final status.
func (o *Orders) WaitSettled(ctx context.Context, merchantID, orderID string, deadline time.Duration) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	backoff := 500 * time.Millisecond
	for {
		ord, err := o.client.GetOrder(ctx, merchantID, orderID)
		if err != nil {
			return nil, err
		}
		if ord.Status != "pending" {
			return ord, nil
		}

		o.lg.Debug("order still pending, backing off",
			zap.String("order_id", orderID),
			zap.Duration("backoff", backoff),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ord, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}
