package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holzmann/marketpay-go/internal/config"
	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/handler"
	"github.com/holzmann/marketpay-go/internal/infra/cache"
	"github.com/holzmann/marketpay-go/internal/infra/observability"
	"github.com/holzmann/marketpay-go/internal/infra/resilience"
	"github.com/holzmann/marketpay-go/internal/infra/stripeconnect"
	"github.com/holzmann/marketpay-go/internal/infra/supabase"
	"github.com/holzmann/marketpay-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("provider_api_url", cfg.ProviderAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}
	if cfg.ProviderSecretKey == "" {
		logger.Fatal("PROVIDER_SECRET_KEY is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "marketpay")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	catalogCache := cache.New[[]domain.ProductWithPrice](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeBreaker := resilience.NewCircuitBreaker("supabase")
	providerBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		storeBreaker,
		resilienceCfg,
		logger,
	)

	// The provider client carries no retry layer. A timed-out charge may
	// have gone through; replaying it would double-charge.
	provider := stripeconnect.NewClient(httpClient, cfg.ProviderAPIURL, cfg.ProviderSecretKey, providerBulkhead, logger)

	// --- Store bootstrap ---
	if err := waitForStore(store, logger); err != nil {
		logger.Fatal("store unreachable", zap.Error(err))
	}
	logStoreTotals(store, logger)

	// --- Services ---
	authSvc := service.NewAuthService(store, store, cfg.StateSecret, cfg.SessionTTL, cfg.StateTTL, logger)
	vendorSvc := service.NewVendorService(store, store, logger)
	paySvc := service.NewPaymentService(store, store, store, provider, catalogCache, metrics, logger)

	// --- Demo data ---
	if cfg.SeedDemoData {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := paySvc.SeedDemoCustomers(ctx); err != nil {
			logger.Warn("demo customer seeding failed", zap.Error(err))
		}
		cancel()
	}

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Auth:       authSvc,
		Vendors:    vendorSvc,
		Payments:   paySvc,
		VendorRead: store,
		Metrics:    metrics,
		AppBaseURL: cfg.AppBaseURL,
		Logger:     logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// logStoreTotals reports the record counts once at startup. Failures are
// logged and ignored; the totals are informational.
func logStoreTotals(store *supabase.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vendors, err := store.CountVendors(ctx)
	if err != nil {
		logger.Warn("could not count vendors", zap.Error(err))
		return
	}
	customers, err := store.CountCustomers(ctx)
	if err != nil {
		logger.Warn("could not count customers", zap.Error(err))
		return
	}
	logger.Info("store ready",
		zap.Int("vendors", vendors),
		zap.Int("customers", customers),
	)
}

// waitForStore retries the store health probe a few times at startup so a
// cold database container does not kill the process.
func waitForStore(store *supabase.Client, logger *zap.Logger) error {
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = store.Ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		logger.Warn("store not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return err
}
