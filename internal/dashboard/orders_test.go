package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.Total)
	assert.Zero(t, s.Paid)
	assert.Zero(t, s.Failed)
	assert.True(t, s.Revenue.IsZero())
	assert.Empty(t, s.Orders)
	assert.Empty(t, s.Recent)
}

func TestSummarize_Counters(t *testing.T) {
	s := Summarize([]Order{
		{ID: "o1", Status: "paid", Total: 10.50},
		{ID: "o2", Status: "paid", Total: 20.00},
		{ID: "o3", Status: "failed", Total: 99.99},
		{ID: "o4", Status: "pending", Total: 5.00},
		{ID: "o5", Status: "shipped", Total: 1.00}, // unknown status
	})

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Paid)
	assert.Equal(t, 1, s.Failed)
	// Revenue sums paid orders only.
	assert.True(t, decimal.RequireFromString("30.50").Equal(s.Revenue))
}

func TestSummarize_SortsByTimestampDescending(t *testing.T) {
	s := Summarize([]Order{
		{ID: "a", Timestamp: 5},
		{ID: "b", Timestamp: 1},
		{ID: "c", Timestamp: 3},
	})

	got := make([]int64, len(s.Orders))
	for i, o := range s.Orders {
		got[i] = o.Timestamp
	}
	assert.Equal(t, []int64{5, 3, 1}, got)
}

func TestSummarize_RecentTruncatesToFive(t *testing.T) {
	orders := make([]Order, 8)
	for i := range orders {
		orders[i] = Order{ID: string(rune('a' + i)), Timestamp: int64(i)}
	}

	s := Summarize(orders)

	require.Len(t, s.Recent, 5)
	// Recent is the first five post-sort, newest first.
	assert.Equal(t, int64(7), s.Recent[0].Timestamp)
	assert.Equal(t, int64(3), s.Recent[4].Timestamp)
	assert.Len(t, s.Orders, 8)
}

func TestOrders_LoadAgainstServer(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	api.setOrders([]Order{
		{ID: "o1", Status: "paid", Total: 15, Timestamp: 2},
		{ID: "o2", Status: "failed", Total: 10, Timestamp: 1},
	})

	client := NewClient(srv.URL)
	client.SetToken("tok-1")
	orders := NewOrders(client, zap.NewNop(), nil)

	s, err := orders.Load(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Paid)
	assert.Equal(t, "o1", s.Orders[0].ID)
}

func TestOrders_SimulatePaymentDelayedReload(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok-1")

	reloaded := make(chan struct{})
	orders := NewOrders(client, zap.NewNop(), func(context.Context) {
		close(reloaded)
	})
	orders.ReloadDelay = 10 * time.Millisecond

	require.NoError(t, orders.SimulatePayment(context.Background(), "m1", "o1"))

	select {
	case <-reloaded:
	case <-time.After(time.Second):
		t.Fatal("delayed reload never fired")
	}
}

func TestOrders_SimulatePaymentReloadCancelledWithContext(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok-1")

	reloaded := make(chan struct{})
	orders := NewOrders(client, zap.NewNop(), func(context.Context) {
		close(reloaded)
	})
	orders.ReloadDelay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, orders.SimulatePayment(ctx, "m1", "o1"))
	cancel()

	select {
	case <-reloaded:
		t.Fatal("delayed reload ran despite cancelled context")
	case <-time.After(100 * time.Millisecond):
	}
}
