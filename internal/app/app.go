// Package app wires configuration, storage, domain services, and the HTTP
// server into a running dashboard backend.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/ghala-dashboard/internal/domain/analytics"
	"github.com/xenking/ghala-dashboard/internal/domain/auth"
	"github.com/xenking/ghala-dashboard/internal/domain/order"
	"github.com/xenking/ghala-dashboard/internal/domain/payment"
	"github.com/xenking/ghala-dashboard/internal/handler"
	"github.com/xenking/ghala-dashboard/internal/notify"
	"github.com/xenking/ghala-dashboard/internal/processor"
	"github.com/xenking/ghala-dashboard/internal/session"
	"github.com/xenking/ghala-dashboard/internal/storage/postgres"
	"github.com/xenking/ghala-dashboard/pkg/health"
	"github.com/xenking/ghala-dashboard/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Session store: Redis when configured, in-process memory otherwise.
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb := session.NewRedisClient(cfg.RedisAddr)
		defer func() { _ = rdb.Close() }()
		healthSvc.AddReadinessCheck("redis", 2*time.Second, func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		sessions = session.NewRedisStore(rdb)
		lg.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = session.NewMemoryStore()
		lg.Info("Using in-memory session store")
	}

	healthSvc.Start(ctx, 10*time.Second)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)

	// Order event fan-out and the simulated payment processor.
	hub := notify.NewHub(lg.Named("notify"))
	proc := processor.New(processor.Config{
		Delay:       cfg.Payment.ProcessingDelay,
		FailureRate: cfg.Payment.FailureRate,
	}, orderRepo, hub, lg.Named("processor"))
	proc.Start(ctx)
	defer proc.Stop()

	// Domain services.
	authService := auth.NewService(userRepo, sessions, cfg.Session.TokenTTL)
	orderService := order.NewService(orderRepo, paymentRepo, proc)
	paymentService := payment.NewService(paymentRepo)
	analyticsService := analytics.NewService(orderRepo)

	// HTTP handlers.
	h := handler.New(authService, orderService, paymentService, analyticsService, hub)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Router())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("ghala-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
