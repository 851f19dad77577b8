package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ositahq/cbam-gateway/internal/config"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
	"github.com/ositahq/cbam-gateway/internal/core/usecase"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/backend"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/cache"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/events"
	natsbus "github.com/ositahq/cbam-gateway/internal/infrastructure/events/nats"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/preflight"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/resilience"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/session"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/workbook"
)

type App struct {
	Config config.Config

	Gateway   ports.BackendGateway
	Cache     ports.QueryCache
	Events    ports.StatusEventBus
	Sessions  ports.SessionManager
	Validator ports.ValidationReader
	Exporter  ports.Exporter
	Uploader  ports.Uploader
	Reviewer  ports.Reviewer

	// Watcher is the concrete poller so the watcher binary can attach
	// its metrics observer.
	Watcher *usecase.StatusWatcher

	SessionStore ports.SessionStore

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := session.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sessionStore := session.NewStore(db)
	if err := sessionStore.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryBackoff,
		BreakerEnabled: true,
	})

	gateway := backend.New(cfg.BackendURL, backend.Options{
		Timeout:  cfg.BackendTimeout,
		Executor: executor,
	})

	queryCache := cache.New(cfg.CacheTTL)

	var bus ports.StatusEventBus
	var closeBus func()
	if cfg.NATSURL != "" {
		natsBus, err := natsbus.New(cfg.NATSURL, natsbus.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init event bus: %w", err)
		}
		bus = natsBus
		closeBus = natsBus.Close
	} else {
		slog.Warn("nats_disabled", "reason", "NATS_URL not set")
		bus = events.NoopBus{}
		closeBus = func() {}
	}

	identity := session.NewIdentityClient(cfg.IdentityURL, cfg.IdentityAPIKey)
	sessions := usecase.NewSessionManager(identity, sessionStore)

	validator := usecase.NewValidationAggregator(gateway, queryCache)
	exporter := usecase.NewExportWorkflow(gateway, validator, queryCache, workbook.NewBuilder())
	uploader := usecase.NewDocumentUploader(
		gateway,
		preflight.NewPDFChecker(cfg.UploadMaxPages),
		bus,
		queryCache,
		usecase.UploadPolicy{MaxFiles: cfg.UploadMaxFiles, AllowedMIMEs: []string{"application/pdf"}},
	)
	watcher := usecase.NewStatusWatcher(gateway, bus, queryCache, cfg.PollInterval, 1)
	reviewer := usecase.NewFieldReviewer(gateway, queryCache)

	return &App{
		Config: cfg,

		Gateway:   gateway,
		Cache:     queryCache,
		Events:    bus,
		Sessions:  sessions,
		Validator: validator,
		Exporter:  exporter,
		Uploader:  uploader,
		Reviewer:  reviewer,
		Watcher:   watcher,

		SessionStore: sessionStore,

		closeFn: func() {
			closeBus()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
