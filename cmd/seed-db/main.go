// Command seed-db provisions demo users, payment settings, and a month of
// historical orders so the dashboard has data to show out of the box.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/ghala-dashboard/internal/domain/auth"
	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/domain/payment"
	"github.com/xenking/ghala-dashboard/internal/storage/postgres"
)

type demoUser struct {
	username   string
	password   string
	name       string
	email      string
	role       string
	merchantID string
}

var demoUsers = []demoUser{
	{"admin", "admin123", "Platform Admin", "admin@ghala.io", "admin", "m0"},
	{"merchant1", "merchant123", "Mwamba Stores", "mwamba@ghala.io", "merchant", "m1"},
	{"merchant2", "merchant123", "Chileshe Traders", "chileshe@ghala.io", "merchant", "m2"},
}

var demoProducts = []string{
	"Maize Meal 25kg",
	"Cooking Oil 5L",
	"Sugar 10kg",
	"Washing Powder 2kg",
	"Rice 5kg",
	"Tea Leaves 500g",
}

var demoCustomers = []string{
	"Bwalya Mulenga",
	"Chanda Phiri",
	"Mutale Banda",
	"Natasha Zulu",
	"Kelvin Tembo",
}

func main() {
	var (
		databaseURL string
		orderCount  int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&orderCount, "orders", 40, "demo orders to create per merchant")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, orderCount); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, orderCount int) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	users := postgres.NewUserRepository(pool)
	settings := postgres.NewPaymentRepository(pool)
	orders := postgres.NewOrderRepository(pool)

	if err := seedUsers(ctx, users); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedSettings(ctx, settings); err != nil {
		return errors.Wrap(err, "seed payment settings")
	}
	if err := seedOrders(ctx, orders, orderCount); err != nil {
		return errors.Wrap(err, "seed orders")
	}

	return nil
}

func seedUsers(ctx context.Context, users *postgres.UserRepository) error {
	slog.Info("seeding demo users", slog.Int("count", len(demoUsers)))

	for _, du := range demoUsers {
		hash, err := auth.HashPassword(du.password)
		if err != nil {
			return errors.Wrapf(err, "hash password for %s", du.username)
		}

		if err := users.Upsert(ctx, &auth.User{
			Username:     du.username,
			PasswordHash: hash,
			Name:         du.name,
			Email:        du.email,
			Role:         du.role,
			MerchantID:   du.merchantID,
		}); err != nil {
			return errors.Wrapf(err, "upsert user %s", du.username)
		}

		slog.Info("upserted user", slog.String("username", du.username), slog.String("role", du.role))
	}

	return nil
}

func seedSettings(ctx context.Context, settings *postgres.PaymentRepository) error {
	slog.Info("seeding payment settings")

	records := []*payment.Settings{
		{
			MerchantID:     "m1",
			Method:         payment.MethodMobile,
			Label:          "Mwamba MTN Money",
			Provider:       "MTN",
			PhoneNumber:    "0967000001",
			CommissionRate: payment.DefaultCommissionRate,
		},
		{
			MerchantID:     "m2",
			Method:         payment.MethodCard,
			Label:          "Chileshe Visa",
			Provider:       "Visa",
			CardNumber:     "4111111111111111",
			Expiry:         "12/27",
			CVV:            "123",
			CommissionRate: decimal.RequireFromString("3.0"),
		},
	}

	for _, s := range records {
		if err := settings.Save(ctx, s); err != nil {
			return errors.Wrapf(err, "save settings for %s", s.MerchantID)
		}

		slog.Info("saved settings",
			slog.String("merchant_id", s.MerchantID),
			slog.String("method", string(s.Method)),
		)
	}

	return nil
}

func seedOrders(ctx context.Context, orders *postgres.OrderRepository, perMerchant int) error {
	merchants := []struct {
		id     string
		method string
		rate   decimal.Decimal
	}{
		{"m1", "mobile", payment.DefaultCommissionRate},
		{"m2", "card", decimal.RequireFromString("3.0")},
	}

	now := time.Now()
	hundred := decimal.NewFromInt(100)

	for _, m := range merchants {
		slog.Info("seeding demo orders", slog.String("merchant_id", m.id), slog.Int("count", perMerchant))

		for i := 0; i < perMerchant; i++ {
			createdAt := now.Add(-time.Duration(rand.IntN(30*24)) * time.Hour)
			total := decimal.NewFromInt(int64(20 + rand.IntN(480))).Add(decimal.NewFromInt(int64(rand.IntN(100))).Div(hundred))

			status := order.StatusPaid
			var processedAt int64
			switch r := rand.Float64(); {
			case r < 0.15:
				status = order.StatusPending
			case r < 0.25:
				status = order.StatusFailed
				processedAt = createdAt.Add(5 * time.Second).Unix()
			default:
				processedAt = createdAt.Add(5 * time.Second).Unix()
			}

			o := &order.Order{
				ID:                 uuid.NewString(),
				MerchantID:         m.id,
				CustomerName:       demoCustomers[rand.IntN(len(demoCustomers))],
				Product:            demoProducts[rand.IntN(len(demoProducts))],
				Total:              total,
				Status:             status,
				PaymentMethod:      m.method,
				Commission:         total.Mul(m.rate).Div(hundred).Round(2),
				CreatedAt:          createdAt.Unix(),
				PaymentProcessedAt: processedAt,
			}
			if err := orders.Create(ctx, o); err != nil {
				return errors.Wrapf(err, "create order %d for %s", i+1, m.id)
			}
		}
	}

	slog.Info("demo credentials",
		slog.String("admin", "admin / admin123"),
		slog.String("merchants", "merchant1, merchant2 / merchant123"),
	)

	return nil
}
