package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRenderer(t *testing.T, api *fakeAPI) (*ChartRenderer, func()) {
	t.Helper()
	srv := api.start()
	client := NewClient(srv.URL)
	client.SetToken("tok-1")
	return NewChartRenderer(client, zap.NewNop()), srv.Close
}

func TestChartRenderer_RefreshBuildsAllCharts(t *testing.T) {
	r, done := newTestRenderer(t, newFakeAPI())
	defer done()

	require.NoError(t, r.Refresh(context.Background(), "m1"))

	for _, name := range []string{
		ChartOrders, ChartPayments, ChartStatuses,
		ChartRevenue, ChartDaily, ChartMonthlyTrends,
	} {
		h := r.Handle(name)
		require.NotNil(t, h, "chart %s", name)
		assert.Equal(t, 1, h.Draws, "chart %s", name)
	}

	orders := r.Handle(ChartOrders)
	assert.Equal(t, ChartLine, orders.Kind)
	assert.Equal(t, []string{"2026-08-29", "2026-08-30"}, orders.Labels)
	assert.Equal(t, []float64{1, 2}, orders.Datasets[0].Values)

	daily := r.Handle(ChartDaily)
	assert.True(t, daily.Options.DualAxis)
	require.Len(t, daily.Datasets, 2)
	assert.Equal(t, []float64{10.50, 20.00}, daily.Datasets[1].Values)
}

func TestChartRenderer_ReconcileKeepsHandleIdentity(t *testing.T) {
	r, done := newTestRenderer(t, newFakeAPI())
	defer done()

	require.NoError(t, r.Refresh(context.Background(), "m1"))
	before := r.Handle(ChartOrders)

	require.NoError(t, r.Refresh(context.Background(), "m1"))
	after := r.Handle(ChartOrders)

	// Same handle, data replaced in place, redraw counted.
	assert.Same(t, before, after)
	assert.Equal(t, 2, after.Draws)
}

func TestChartRenderer_RefreshAllOrNothing(t *testing.T) {
	api := newFakeAPI()
	r, done := newTestRenderer(t, api)
	defer done()

	require.NoError(t, r.Refresh(context.Background(), "m1"))
	before := r.Handle(ChartOrders).Draws

	api.mu.Lock()
	api.analyticsFail = true
	api.mu.Unlock()

	require.Error(t, r.Refresh(context.Background(), "m1"))
	// Failure leaves every chart untouched.
	assert.Equal(t, before, r.Handle(ChartOrders).Draws)
}

func TestChartRenderer_MonthlyTrendsRegenerated(t *testing.T) {
	r, done := newTestRenderer(t, newFakeAPI())
	defer done()

	require.NoError(t, r.Refresh(context.Background(), "m1"))
	h := r.Handle(ChartMonthlyTrends)
	require.NotNil(t, h)
	assert.Len(t, h.Labels, 12)
	assert.Len(t, h.Datasets[0].Values, 12)
	for _, v := range h.Datasets[0].Values {
		assert.GreaterOrEqual(t, v, 20.0)
		assert.Less(t, v, 100.0)
	}
}

func TestChartRenderer_ApplyTheme(t *testing.T) {
	r, done := newTestRenderer(t, newFakeAPI())
	defer done()

	require.NoError(t, r.Refresh(context.Background(), "m1"))
	require.False(t, r.Handle(ChartOrders).Options.Dark)

	r.ApplyTheme(true)

	h := r.Handle(ChartOrders)
	assert.True(t, h.Options.Dark)
	assert.Equal(t, 2, h.Draws)
}

func TestChartRenderer_Reset(t *testing.T) {
	r, done := newTestRenderer(t, newFakeAPI())
	defer done()

	require.NoError(t, r.Refresh(context.Background(), "m1"))
	r.Reset()
	assert.Nil(t, r.Handle(ChartOrders))
	assert.Empty(t, r.Handles())
}
