package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/josh-kwaku/mobile-payments/internal/config"
	"github.com/josh-kwaku/mobile-payments/internal/events"
	"github.com/josh-kwaku/mobile-payments/internal/handler"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
	"github.com/josh-kwaku/mobile-payments/internal/metrics"
	"github.com/josh-kwaku/mobile-payments/internal/server"
	"github.com/josh-kwaku/mobile-payments/internal/service/payment"
	"github.com/josh-kwaku/mobile-payments/internal/telemetry"
)

const serviceName = "payments-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)

	shutdownTracing, err := telemetry.Init(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if len(cfg.KafkaBrokers) > 0 {
		logger.Info("publishing accepted payments", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	payments := payment.NewService(publisher, logger)
	router := server.NewRouter(logger, server.RouterDependencies{
		Payments: handler.NewPaymentHandler(payments, m),
		Metrics:  m,
	})
	srv := server.New(logger, cfg.Port, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		logger.Info("signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			exitCode = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		exitCode = 1
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("failed to close event publisher", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("failed to flush traces", "error", err)
	}

	cancel()

	logger.Info("server stopped")
	os.Exit(exitCode)
}
