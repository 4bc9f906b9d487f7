package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/checkout-orders/docs"
	"github.com/josh-kwaku/checkout-orders/internal/checkout"
	"github.com/josh-kwaku/checkout-orders/internal/config"
	"github.com/josh-kwaku/checkout-orders/internal/handler"
	"github.com/josh-kwaku/checkout-orders/internal/logging"
	"github.com/josh-kwaku/checkout-orders/internal/middleware"
	"github.com/josh-kwaku/checkout-orders/internal/repository"
	"github.com/josh-kwaku/checkout-orders/internal/service/payment"
	"github.com/josh-kwaku/checkout-orders/internal/tracing"
	"github.com/josh-kwaku/checkout-orders/migrations"
)

const serviceName = "checkout-orders"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewPostgresDB(ctx, cfg.DSN(), repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	payments := repository.NewPaymentRepository(db)
	gateway := checkout.NewClient(checkout.Config{
		AuthURL:          cfg.CheckoutAuthURL,
		Audience:         cfg.CheckoutAudience,
		ClientID:         cfg.CheckoutClientID,
		ClientSecret:     cfg.CheckoutClientSecret,
		SessionURL:       cfg.CheckoutSessionURL,
		SessionStatusURL: cfg.CheckoutSessionStatusURL,
		ProfileID:        cfg.CheckoutProfileID,
		Timeout:          cfg.CheckoutTimeout,
	})
	orders := payment.NewService(payments, gateway, cfg.BaseURL)

	router := handler.NewRouter(
		handler.NewOrderHandler(orders),
		handler.NewHealthHandler(payments),
		docs.OpenAPI,
	)
	router.Use(middleware.Metrics)

	var h http.Handler = router
	h = middleware.Recovery(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	h = otelhttp.NewHandler(h, "http.server")

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracer shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
