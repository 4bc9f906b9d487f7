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

	"github.com/josh-kwaku/checkout-orders/internal/logging"
	"github.com/josh-kwaku/checkout-orders/internal/mockprovider"
)

func main() {
	cfg, err := mockprovider.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("mock-provider", cfg.LogLevel, cfg.AppEnv)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mockprovider.NewServer(*cfg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("mock provider started", "addr", cfg.Addr, "account", cfg.Account)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("mock provider forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("mock provider stopped")
}
