package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App owns every dashboard component explicitly: session store, order
// view-model, settings form, chart renderer, and navigation. There is no
// module-global state; front-ends hold an App and read from it.
type App struct {
	client *Client
	lg     *zap.Logger

	Session *SessionStore
	Orders  *Orders
	Charts  *ChartRenderer
	Nav     *Nav

	mu         sync.Mutex
	merchantID string
	summary    OrderSummary
	form       *SettingsForm

	// sessionCancel tears down watchers and in-flight reloads for the
	// current login, so nothing can repaint data for a stale merchant.
	sessionCancel context.CancelFunc
}

// NewApp wires the components around a single API client and storage.
func NewApp(baseURL string, storage Storage, lg *zap.Logger) *App {
	client := NewClient(baseURL)

	a := &App{
		client:  client,
		lg:      lg,
		Session: NewSessionStore(client, storage),
		Charts:  NewChartRenderer(client, lg.Named("charts")),
		Nav:     NewNav(),
	}
	a.Orders = NewOrders(client, lg.Named("orders"), a.reloadAll)
	return a
}

// Client exposes the underlying API client for direct calls.
func (a *App) Client() *Client { return a.client }

// MerchantID returns the merchant the app is currently showing.
func (a *App) MerchantID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.merchantID
}

// Summary returns the last loaded order summary.
func (a *App) Summary() OrderSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// Form returns the settings form, nil before the first login or restore.
func (a *App) Form() *SettingsForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form
}

// Login authenticates, then runs the initial loads: orders and settings in
// parallel, analytics after both. The navigation lands on the dashboard
// section and the order event stream starts in the background.
func (a *App) Login(ctx context.Context, username, password string) error {
	user, err := a.Session.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return a.begin(ctx, user.MerchantID)
}

// Restore resumes a persisted session and runs the same initial loads as
// Login. It reports false when there is no session to resume.
func (a *App) Restore(ctx context.Context) (bool, error) {
	user, ok := a.Session.Restore()
	if !ok {
		return false, nil
	}
	if err := a.begin(ctx, user.MerchantID); err != nil {
		return true, err
	}
	return true, nil
}

func (a *App) begin(ctx context.Context, merchantID string) error {
	sessionCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	if a.sessionCancel != nil {
		a.sessionCancel()
	}
	a.sessionCancel = cancel
	a.merchantID = merchantID
	a.mu.Unlock()

	a.Charts.Reset()
	a.Nav.Activate(SectionDashboard)
	a.Charts.ApplyTheme(a.Session.DarkMode())

	var (
		summary OrderSummary
		form    *SettingsForm
	)
	g, loadCtx := errgroup.WithContext(sessionCtx)
	g.Go(func() error {
		var err error
		summary, err = a.Orders.Load(loadCtx, merchantID)
		return err
	})
	g.Go(func() error {
		f, err := NewSettingsForm(loadCtx, a.client)
		if err != nil {
			return err
		}
		if err := f.Load(loadCtx, merchantID); err != nil {
			return err
		}
		form = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.mu.Lock()
	a.summary = summary
	a.form = form
	a.mu.Unlock()

	if err := a.Charts.Refresh(sessionCtx, merchantID); err != nil {
		// Charts stay empty; the rest of the dashboard is usable.
		a.lg.Warn("initial chart refresh failed", zap.Error(err))
	}

	go watchOrdersLoop(sessionCtx, a.client, merchantID, a.lg.Named("events"), func(e OrderEvent) {
		a.lg.Debug("order event received",
			zap.String("order_id", e.OrderID),
			zap.String("status", e.Status),
		)
		a.reloadAll(sessionCtx)
	})
	return nil
}

// reloadAll re-fetches the order list and refreshes every chart. It runs
// after each successful mutation and on every pushed order event.
func (a *App) reloadAll(ctx context.Context) {
	a.mu.Lock()
	merchantID := a.merchantID
	a.mu.Unlock()
	if merchantID == "" {
		return
	}

	summary, err := a.Orders.Load(ctx, merchantID)
	if err != nil {
		a.lg.Error("order reload failed", zap.Error(err))
		return
	}

	a.mu.Lock()
	a.summary = summary
	a.mu.Unlock()

	if err := a.Charts.Refresh(ctx, merchantID); err != nil {
		a.lg.Error("chart refresh failed", zap.Error(err))
	}
}

// SetDarkMode persists the theme preference and applies it to every chart.
func (a *App) SetDarkMode(enabled bool) {
	a.Session.SetDarkMode(enabled)
	a.Charts.ApplyTheme(enabled)
}

// Logout tears down the session: watchers stop, persisted identity clears,
// charts reset, navigation returns to the dashboard for the next login.
func (a *App) Logout(ctx context.Context) {
	a.mu.Lock()
	if a.sessionCancel != nil {
		a.sessionCancel()
		a.sessionCancel = nil
	}
	a.merchantID = ""
	a.summary = OrderSummary{}
	a.form = nil
	a.mu.Unlock()

	a.Session.Logout(ctx)
	a.Charts.Reset()
	a.Nav.Activate(SectionDashboard)
}
