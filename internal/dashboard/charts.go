package dashboard

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/ghala-dashboard/internal/domain/analytics"
)

// ChartKind is the widget type a chart handle renders as.
type ChartKind string

const (
	ChartLine     ChartKind = "line"
	ChartDoughnut ChartKind = "doughnut"
	ChartPie      ChartKind = "pie"
	ChartBar      ChartKind = "bar"
	ChartDualAxis ChartKind = "dual-axis"
)

// Chart names in the renderer's registry.
const (
	ChartOrders        = "orders"
	ChartPayments      = "payments"
	ChartStatuses      = "statuses"
	ChartRevenue       = "revenue"
	ChartDaily         = "daily-performance"
	ChartMonthlyTrends = "monthly-trends"
)

// Dataset is one labelled series within a chart.
type Dataset struct {
	Label  string
	Values []float64
}

// ChartOptions is the construction-time configuration of a chart. Only the
// theme is revisited after construction, by ApplyTheme.
type ChartOptions struct {
	Dark     bool
	DualAxis bool
}

// ChartHandle is a disposable widget handle. Refresh replaces its data in
// place and bumps Draws; the handle identity is stable across refreshes so
// front-ends can keep it bound to a rendered widget.
type ChartHandle struct {
	Name     string
	Kind     ChartKind
	Labels   []string
	Datasets []Dataset
	Options  ChartOptions

	// Draws counts data replacements, including the initial one.
	Draws int
}

// ChartRenderer owns the chart registry and fills it from the analytics
// endpoints. All handles live in the renderer; nothing is module-global.
type ChartRenderer struct {
	client *Client
	lg     *zap.Logger

	mu      sync.Mutex
	handles map[string]*ChartHandle
	dark    bool
}

// NewChartRenderer creates a renderer with an empty registry.
func NewChartRenderer(client *Client, lg *zap.Logger) *ChartRenderer {
	return &ChartRenderer{
		client:  client,
		lg:      lg,
		handles: make(map[string]*ChartHandle),
	}
}

// Handle returns the named chart handle, or nil before its first refresh.
func (r *ChartRenderer) Handle(name string) *ChartHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles[name]
}

// Handles returns the registry as a name-keyed snapshot of the live handles.
func (r *ChartRenderer) Handles() map[string]*ChartHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*ChartHandle, len(r.handles))
	for name, h := range r.handles {
		out[name] = h
	}
	return out
}

// Refresh fetches the three analytics series concurrently and reconciles all
// charts. All-or-nothing: if any fetch fails, no chart is touched and the
// error is both logged and returned.
func (r *ChartRenderer) Refresh(ctx context.Context, merchantID string) error {
	var (
		series   analytics.Series
		methods  analytics.Distribution
		statuses analytics.Distribution
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = r.client.OrderSeries(ctx, merchantID)
		return err
	})
	g.Go(func() error {
		var err error
		methods, err = r.client.MethodDistribution(ctx, merchantID)
		return err
	})
	g.Go(func() error {
		var err error
		statuses, err = r.client.StatusDistribution(ctx, merchantID)
		return err
	})
	if err := g.Wait(); err != nil {
		r.lg.Error("analytics refresh failed, charts left untouched",
			zap.String("merchant_id", merchantID),
			zap.Error(err),
		)
		return err
	}

	counts := make([]float64, len(series.OrderCounts))
	for i, c := range series.OrderCounts {
		counts[i] = float64(c)
	}
	revenue := make([]float64, len(series.Revenue))
	for i, v := range series.Revenue {
		revenue[i] = v.InexactFloat64()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reconcile(ChartOrders, ChartLine, series.Dates, []Dataset{
		{Label: "Orders", Values: counts},
	})
	r.reconcile(ChartPayments, ChartDoughnut,
		analytics.MethodKeys, []Dataset{{Label: "Payment Methods", Values: distributionValues(methods, analytics.MethodKeys)}})
	r.reconcile(ChartStatuses, ChartPie,
		analytics.StatusKeys, []Dataset{{Label: "Order Status", Values: distributionValues(statuses, analytics.StatusKeys)}})
	r.reconcile(ChartRevenue, ChartBar, series.Dates, []Dataset{
		{Label: "Revenue", Values: revenue},
	})
	r.reconcile(ChartDaily, ChartDualAxis, series.Dates, []Dataset{
		{Label: "Orders", Values: counts},
		{Label: "Revenue", Values: revenue},
	})

	// Monthly trends are demo data, regenerated randomly on every refresh
	// rather than fetched.
	r.reconcile(ChartMonthlyTrends, ChartLine, monthLabels, []Dataset{
		{Label: "Trend", Values: randomTrend(len(monthLabels))},
	})

	return nil
}

// reconcile updates an existing handle's data in place, or constructs a new
// handle when the chart has not been drawn yet. Caller holds r.mu.
func (r *ChartRenderer) reconcile(name string, kind ChartKind, labels []string, datasets []Dataset) {
	if h, ok := r.handles[name]; ok {
		h.Labels = labels
		h.Datasets = datasets
		h.Draws++
		return
	}
	r.handles[name] = &ChartHandle{
		Name:     name,
		Kind:     kind,
		Labels:   labels,
		Datasets: datasets,
		Options: ChartOptions{
			Dark:     r.dark,
			DualAxis: kind == ChartDualAxis,
		},
		Draws: 1,
	}
}

// ApplyTheme revisits every handle's construction-time options with the new
// theme and marks it for redraw.
func (r *ChartRenderer) ApplyTheme(dark bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dark = dark
	for _, h := range r.handles {
		h.Options.Dark = dark
		h.Draws++
	}
}

// Reset drops every handle, used on logout and merchant switch so the next
// refresh rebuilds the registry from scratch.
func (r *ChartRenderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = make(map[string]*ChartHandle)
}

func distributionValues(d analytics.Distribution, keys []string) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = d[k]
	}
	return out
}

var monthLabels = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

func randomTrend(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 20 + rand.Float64()*80
	}
	return out
}
