// cmd/activities-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"mergington-activities/internal/activity/service"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, nil)
	defer obs.Shutdown()

	var tracer trace.Tracer
	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			zapLog.Fatal("tracing setup failed", zap.Error(err))
		}
		defer tracing.Shutdown()
		tracer = tracing.Tracer(cfg.App.Name)
		zapLog.Info("Request tracing enabled", zap.String("jaegerEndpoint", cfg.Tracing.JaegerEndpoint))
	}

	ctx := context.Background()

	activityStore, err := loadStore(cfg.Registry, log)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}

	sinks, err := buildSinks(ctx, cfg, zapLog, log)
	if err != nil {
		zapLog.Fatal("event sinks failed to start", zap.Error(err))
	}
	defer sinks.Close()

	handler := service.NewHandler(&service.Config{
		EventTimeout: config.GetDuration(cfg.Events.PublishTimeout),
		StaticDir:    cfg.Server.StaticDir,
	}, activityStore, sinks.Publisher, log).WithRecorders(obs)
	for name, check := range sinks.Checks {
		handler.AddReadinessCheck(name, check)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      service.NewHTTPHandler(handler, log, tracer, metrics.HTTPRecorder{}, obs),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown incomplete", zap.Error(err))
	}

	zapLog.Info("Activities API stopped gracefully")
}
