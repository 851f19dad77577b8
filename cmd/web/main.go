package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/ositahq/cbam-gateway/internal/adapters/http"
	"github.com/ositahq/cbam-gateway/internal/bootstrap"
	"github.com/ositahq/cbam-gateway/internal/config"
	"github.com/ositahq/cbam-gateway/internal/observability/logging"
	"github.com/ositahq/cbam-gateway/internal/observability/metrics"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logging.Setup("web", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	webMetrics := metrics.NewWebMetrics("web")

	router := httpadapter.NewRouter(httpadapter.RouterDeps{
		Sessions:        app.Sessions,
		Validator:       app.Validator,
		Exporter:        app.Exporter,
		Uploader:        app.Uploader,
		Reviewer:        app.Reviewer,
		Gateway:         app.Gateway,
		Events:          app.Events,
		Metrics:         webMetrics,
		CompanionAppURL: cfg.CompanionAppURL,
	})

	server := &http.Server{
		Addr:         ":" + cfg.WebPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", webMetrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		slog.Info("web_listening", "port", cfg.WebPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server error: %v", err)
		}
	}()
	go func() {
		slog.Info("metrics_listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	go purgeSessions(ctx, app)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("web shutdown error", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics shutdown error", "error", err)
	}
}

func purgeSessions(ctx context.Context, app *bootstrap.App) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := app.SessionStore.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				slog.Warn("session_purge_failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("sessions_purged", "count", purged)
			}
		}
	}
}
