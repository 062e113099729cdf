package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/notify"
)

// --- Mock implementations ---

type statusRecorder struct {
	mu      sync.Mutex
	updates []order.Status
}

func (r *statusRecorder) Create(context.Context, *order.Order) error { return nil }
func (r *statusRecorder) Get(context.Context, string, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (r *statusRecorder) List(context.Context, string) ([]order.Order, error) { return nil, nil }
func (r *statusRecorder) Update(context.Context, *order.Order) error          { return nil }
func (r *statusRecorder) Delete(context.Context, string, string) error        { return nil }

func (r *statusRecorder) UpdateStatus(_ context.Context, _, _ string, status order.Status, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, status)
	return nil
}

func (r *statusRecorder) statuses() []order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]order.Status(nil), r.updates...)
}

type eventCollector struct {
	events chan notify.Event
}

func newEventCollector() *eventCollector {
	return &eventCollector{events: make(chan notify.Event, 16)}
}

func (c *eventCollector) Publish(e notify.Event) {
	c.events <- e
}

func (c *eventCollector) wait(t *testing.T) notify.Event {
	t.Helper()
	select {
	case e := <-c.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for order event")
		return notify.Event{}
	}
}

// --- Tests ---

func TestProcessor_TransitionsToPaid(t *testing.T) {
	repo := &statusRecorder{}
	events := newEventCollector()
	p := New(Config{Delay: 5 * time.Millisecond, FailureRate: 0}, repo, events, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	p.Enqueue("m1", "o1")

	e := events.wait(t)
	assert.Equal(t, "m1", e.MerchantID)
	assert.Equal(t, "o1", e.OrderID)
	assert.Equal(t, "paid", e.Status)
	assert.NotZero(t, e.ProcessedAt)
	assert.Equal(t, []order.Status{order.StatusPaid}, repo.statuses())
}

func TestProcessor_TransitionsToFailed(t *testing.T) {
	repo := &statusRecorder{}
	events := newEventCollector()
	p := New(Config{Delay: 5 * time.Millisecond, FailureRate: 1}, repo, events, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	p.Enqueue("m1", "o1")

	e := events.wait(t)
	assert.Equal(t, "failed", e.Status)
	assert.Equal(t, []order.Status{order.StatusFailed}, repo.statuses())
}

func TestProcessor_EnqueueBeforeStartIsDropped(t *testing.T) {
	repo := &statusRecorder{}
	events := newEventCollector()
	p := New(Config{Delay: time.Millisecond, FailureRate: 0}, repo, events, zap.NewNop())

	p.Enqueue("m1", "o1")
	p.Stop()

	assert.Empty(t, repo.statuses())
	select {
	case e := <-events.events:
		t.Fatalf("unexpected event: %+v", e)
	default:
	}
}

func TestProcessor_StopWaitsForInflight(t *testing.T) {
	repo := &statusRecorder{}
	events := newEventCollector()
	p := New(Config{Delay: 20 * time.Millisecond, FailureRate: 0}, repo, events, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	p.Enqueue("m1", "o1")
	p.Stop()

	// Stop returns only after the in-flight order settled.
	require.Equal(t, []order.Status{order.StatusPaid}, repo.statuses())
}

func TestProcessor_ContextCancelAbandonsPendingWork(t *testing.T) {
	repo := &statusRecorder{}
	events := newEventCollector()
	p := New(Config{Delay: time.Hour, FailureRate: 0}, repo, events, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Enqueue("m1", "o1")
	cancel()
	p.Stop()

	// The order stays pending; no status was written and no event published.
	assert.Empty(t, repo.statuses())
	select {
	case e := <-events.events:
		t.Fatalf("unexpected event: %+v", e)
	default:
	}
}
