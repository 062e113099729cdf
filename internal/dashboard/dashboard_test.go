package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApp_LoginRunsInitialLoads(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	api.setOrders([]Order{
		{ID: "o1", Status: "paid", Total: 10, Timestamp: 2},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := NewApp(srv.URL, NewMemoryStorage(), zap.NewNop())
	require.NoError(t, app.Login(ctx, "demo", "demo123"))

	// Session holds the merchant id and the orders loaded exactly once.
	assert.Equal(t, "m1", app.MerchantID())
	assert.Equal(t, 1, api.orderLoads())

	// Dashboard section is visible, the others are not.
	assert.True(t, app.Nav.IsActive(SectionDashboard))
	assert.False(t, app.Nav.IsActive(SectionOrders))
	assert.False(t, app.Nav.IsActive(SectionPaymentSettings))

	// Initial loads populated the summary, the form, and the charts.
	assert.Equal(t, 1, app.Summary().Total)
	assert.NotNil(t, app.Form())
	assert.NotNil(t, app.Charts.Handle(ChartOrders))
}

func TestApp_LoginInvalidCredentials(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	app := NewApp(srv.URL, NewMemoryStorage(), zap.NewNop())
	err := app.Login(context.Background(), "demo", "wrong")

	require.Error(t, err)
	// The server-provided message is surfaced as-is.
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.False(t, app.Session.Authenticated())
	assert.Zero(t, api.orderLoads())
}

func TestApp_LogoutClearsState(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := NewMemoryStorage()
	app := NewApp(srv.URL, storage, zap.NewNop())
	require.NoError(t, app.Login(ctx, "demo", "demo123"))

	app.SetDarkMode(true)
	app.Logout(ctx)

	assert.False(t, app.Session.Authenticated())
	assert.Empty(t, app.MerchantID())
	assert.Zero(t, app.Summary().Total)
	assert.Nil(t, app.Charts.Handle(ChartOrders))

	// Session storage is cleared, the dark-mode preference survives.
	_, ok := storage.Get("ghalaUser")
	assert.False(t, ok)
	assert.True(t, app.Session.DarkMode())
}

func TestApp_RestoreResumesSession(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := NewMemoryStorage()

	first := NewApp(srv.URL, storage, zap.NewNop())
	require.NoError(t, first.Login(ctx, "demo", "demo123"))
	cancel()

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()

	second := NewApp(srv.URL, storage, zap.NewNop())
	ok, err := second.Restore(ctx2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "m1", second.MerchantID())
	assert.Equal(t, "tok-1", second.Client().Token())
}

func TestApp_RestoreWithoutSavedSession(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	app := NewApp(srv.URL, NewMemoryStorage(), zap.NewNop())
	ok, err := app.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNav_SingleActiveSection(t *testing.T) {
	nav := NewNav()
	assert.Equal(t, SectionDashboard, nav.Active())

	nav.Activate(SectionOrders)
	assert.True(t, nav.IsActive(SectionOrders))
	assert.False(t, nav.IsActive(SectionDashboard))

	// Unknown sections leave the current one visible.
	nav.Activate(Section("settings-typo"))
	assert.True(t, nav.IsActive(SectionOrders))
}

func TestEventsURL(t *testing.T) {
	c := NewClient("https://ghala.example.com")
	c.SetToken("tok-1")

	u, err := c.eventsURL("m1")
	require.NoError(t, err)
	assert.Equal(t, "wss://ghala.example.com/api/ws/orders/m1?token=tok-1", u)
}
