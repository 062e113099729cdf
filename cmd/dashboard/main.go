// Command dashboard is a terminal front-end for the merchant dashboard:
// log in (or resume a saved session), print the order summary and tables,
// show payment settings, and render the analytics series as text.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/ghala-dashboard/internal/dashboard"
)

func main() {
	var (
		apiURL    string
		stateFile string
		username  string
		password  string
		days      int
		simulate  string
		watch     bool
	)

	home, _ := os.UserHomeDir()
	flag.StringVar(&apiURL, "api-url", "http://localhost:8080", "dashboard API base URL")
	flag.StringVar(&stateFile, "state-file", filepath.Join(home, ".ghala", "dashboard.json"), "session state file")
	flag.StringVar(&username, "username", "", "login username (omit to resume saved session)")
	flag.StringVar(&password, "password", "", "login password (or GHALA_PASSWORD env)")
	flag.IntVar(&days, "days", 30, "analytics window in days")
	flag.StringVar(&simulate, "simulate", "", "order id to simulate payment for")
	flag.BoolVar(&watch, "watch", false, "stay connected and reprint on pushed order events")
	flag.Parse()

	if password == "" {
		password = os.Getenv("GHALA_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, apiURL, stateFile, username, password, days, simulate, watch); err != nil {
		slog.Error("dashboard failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, apiURL, stateFile, username, password string, days int, simulate string, watch bool) error {
	lg, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	app := dashboard.NewApp(apiURL, dashboard.NewFileStorage(stateFile), lg)

	if username != "" {
		if err := app.Login(ctx, username, password); err != nil {
			return err
		}
		slog.Info("logged in", slog.String("username", username))
	} else {
		ok, err := app.Restore(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no saved session: pass -username and -password")
		}
		slog.Info("session resumed", slog.String("merchant_id", app.MerchantID()))
	}

	if simulate != "" {
		if err := app.Orders.SimulatePayment(ctx, app.MerchantID(), simulate); err != nil {
			return err
		}
		slog.Info("payment simulation started, waiting for settlement", slog.String("order_id", simulate))
		settled, err := app.Orders.WaitSettled(ctx, app.MerchantID(), simulate, 30*time.Second)
		if err != nil {
			return err
		}
		slog.Info("order settled", slog.String("order_id", simulate), slog.String("status", settled.Status))
	}

	printDashboard(app, days)

	if watch {
		slog.Info("watching for order events, Ctrl-C to exit")
		<-ctx.Done()
		printDashboard(app, days)
	}

	app.Logout(context.WithoutCancel(ctx))
	return nil
}

func printDashboard(app *dashboard.App, days int) {
	s := app.Summary()

	fmt.Printf("\n== Merchant %s ==\n", app.MerchantID())
	fmt.Printf("Orders: %d total, %d paid, %d failed | Revenue: %s\n\n",
		s.Total, s.Paid, s.Failed, s.Revenue.StringFixed(2))

	fmt.Println("Recent orders:")
	printOrders(s.Recent)

	if form := app.Form(); form != nil && form.Method() != "" {
		fmt.Printf("\nPayment method: %s\n", form.Method())
		masked := form.MaskedView()
		for _, field := range form.Fields() {
			fmt.Printf("  %-15s %s\n", field, masked[field])
		}
	}

	if h := app.Charts.Handle(dashboard.ChartOrders); h != nil {
		fmt.Printf("\nOrders, last %d days:\n", days)
		printSeries(h)
	}
	if h := app.Charts.Handle(dashboard.ChartRevenue); h != nil {
		fmt.Println("\nRevenue:")
		printSeries(h)
	}
}

func printOrders(orders []dashboard.Order) {
	if len(orders) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, o := range orders {
		fmt.Printf("  %-36s %-20s %-20s %8.2f  %-8s %s\n",
			o.ID, o.CustomerName, o.Product, o.Total, o.Status,
			time.Unix(o.Timestamp, 0).Format("2006-01-02 15:04"),
		)
	}
}

// printSeries renders the first dataset of a chart as a crude bar chart.
func printSeries(h *dashboard.ChartHandle) {
	if len(h.Datasets) == 0 {
		return
	}
	values := h.Datasets[0].Values

	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	for i, label := range h.Labels {
		if i >= len(values) {
			break
		}
		bar := strings.Repeat("#", int(values[i]/max*40))
		fmt.Printf("  %-10s %8.2f %s\n", label, values[i], bar)
	}
}
