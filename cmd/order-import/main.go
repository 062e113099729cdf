// Command order-import bulk-loads historical orders from gzip-compressed
// NDJSON exports, one order object per line. Files are processed concurrently.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/domain/payment"
	"github.com/xenking/ghala-dashboard/internal/storage/postgres"
)

const progressEvery = 1000

// orderLine is one exported order record. ID and commission are optional;
// missing values are generated on import.
type orderLine struct {
	ID            string          `json:"id"`
	MerchantID    string          `json:"merchant_id"`
	CustomerName  string          `json:"customer_name"`
	Product       string          `json:"product"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Commission    decimal.Decimal `json:"commission"`
	Timestamp     int64           `json:"timestamp"`
	ProcessedAt   int64           `json:"payment_processed_at"`
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more orders .ndjson.gz files")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("order import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	orders := postgres.NewOrderRepository(pool)

	var imported atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(importFile(ctx, f, orders, &imported))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("imported orders", slog.Int64("count", imported.Load()))
	return nil
}

func importFile(ctx context.Context, path string, orders order.Repository, imported *atomic.Int64) func() error {
	return func() error {
		var lineNo int

		if err := streamGzFile(ctx, path, func(line []byte) error {
			lineNo++
			if len(line) == 0 {
				return nil
			}

			var rec orderLine
			if err := json.Unmarshal(line, &rec); err != nil {
				return errors.Wrapf(err, "parse line %d", lineNo)
			}

			o, err := toOrder(rec)
			if err != nil {
				return errors.Wrapf(err, "line %d", lineNo)
			}
			if err := orders.Create(ctx, o); err != nil {
				return errors.Wrapf(err, "insert order from line %d", lineNo)
			}

			if n := imported.Add(1); n%progressEvery == 0 {
				slog.Info("import progress", slog.Int64("orders", n))
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "import %s", path)
		}

		slog.Info("file imported", slog.String("path", path), slog.Int("lines", lineNo))
		return nil
	}
}

func toOrder(rec orderLine) (*order.Order, error) {
	if rec.MerchantID == "" {
		return nil, errors.New("merchant_id is required")
	}

	status := order.Status(rec.Status)
	if rec.Status == "" {
		status = order.StatusPending
	}
	if !status.Valid() {
		return nil, errors.Errorf("unknown status %q", rec.Status)
	}

	o := &order.Order{
		ID:                 rec.ID,
		MerchantID:         rec.MerchantID,
		CustomerName:       rec.CustomerName,
		Product:            rec.Product,
		Total:              rec.Total,
		Status:             status,
		PaymentMethod:      rec.PaymentMethod,
		Commission:         rec.Commission,
		CreatedAt:          rec.Timestamp,
		PaymentProcessedAt: rec.ProcessedAt,
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CustomerName == "" {
		o.CustomerName = "Anonymous"
	}
	if o.Product == "" {
		o.Product = "Unknown Product"
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = string(payment.MethodMobile)
	}
	if o.Commission.IsZero() && !o.Total.IsZero() {
		o.Commission = o.Total.Mul(payment.DefaultCommissionRate).Div(decimal.NewFromInt(100)).Round(2)
	}
	return o, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
