package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ositahq/cbam-gateway/internal/bootstrap"
	"github.com/ositahq/cbam-gateway/internal/config"
	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/observability/logging"
	"github.com/ositahq/cbam-gateway/internal/observability/metrics"
)

const watchTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Setup("watcher", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	watcherMetrics := metrics.NewWatcherMetrics("watcher")
	app.Watcher.WithObserver(watcherMetrics)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", watcherMetrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WatcherMetricsPort,
		Handler: metricsMux,
	}
	go func() {
		slog.Info("metrics_listening", "port", cfg.WatcherMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("watcher_subscribed")
	err = app.Events.SubscribeWatchRequests(ctx, func(handlerCtx context.Context, projectID string, ident domain.Identity) error {
		watchCtx, cancel := context.WithTimeout(handlerCtx, watchTimeout)
		defer cancel()

		watcherMetrics.WatchStarted()
		watchErr := app.Watcher.Watch(watchCtx, ident, projectID)
		watcherMetrics.WatchFinished(watchErr)
		if watchErr != nil {
			slog.Warn("watch_failed", "project_id", projectID, "error", watchErr)
		}
		return watchErr
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("watcher subscribe error: %v", err)
	}
}
