package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/infrastructure/resilience"
)

// Bus carries document status transitions and watch requests. Status
// events fan out per project (documents.status.<project_id>); watch
// requests are queue-consumed by watcher instances.
type Bus struct {
	conn         *nats.Conn
	statusPrefix string
	watchSubject string
	executor     *resilience.Executor
}

type Options struct {
	ConnectTimeout     time.Duration
	ReconnectWait      time.Duration
	MaxReconnects      int
	ResilienceExecutor *resilience.Executor
}

func New(url string, options Options) (*Bus, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("cbam-gateway"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Bus{
		conn:         conn,
		statusPrefix: "documents.status.",
		watchSubject: "projects.watch",
		executor:     options.ResilienceExecutor,
	}, nil
}

func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *Bus) PublishStatus(ctx context.Context, event domain.StatusEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	return b.publish(ctx, b.statusPrefix+event.ProjectID, raw, "events.status")
}

func (b *Bus) SubscribeStatus(ctx context.Context, projectID string, handler func(domain.StatusEvent)) (func(), error) {
	sub, err := b.conn.Subscribe(b.statusPrefix+projectID, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		var event domain.StatusEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("status_event_decode_failed", "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe status: %w", err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

type watchRequest struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
}

func (b *Bus) PublishWatchRequest(ctx context.Context, projectID string, ident domain.Identity) error {
	raw, err := json.Marshal(watchRequest{ProjectID: projectID, UserID: ident.UserID, Email: ident.Email})
	if err != nil {
		return fmt.Errorf("marshal watch request: %w", err)
	}
	return b.publish(ctx, b.watchSubject, raw, "events.watch")
}

// SubscribeWatchRequests blocks until ctx ends, draining on shutdown the
// way the processing worker does.
func (b *Bus) SubscribeWatchRequests(ctx context.Context, handler func(context.Context, string, domain.Identity) error) error {
	sub, err := b.conn.QueueSubscribe(b.watchSubject, "watchers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		var req watchRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Warn("watch_request_decode_failed", "error", err)
			return
		}
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		ident := domain.Identity{UserID: req.UserID, Email: req.Email}
		if err := handler(handlerCtx, req.ProjectID, ident); err != nil {
			slog.Error("watch_handler_failed", "project_id", req.ProjectID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := b.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := b.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (b *Bus) publish(ctx context.Context, subject string, payload []byte, operation string) error {
	call := func(context.Context) error {
		if err := b.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if b.executor != nil {
		err = b.executor.Execute(ctx, operation, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil && classifyNATSError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func classifyNATSError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{}
	}
	if resilience.IsCircuitOpen(err) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}
	return resilience.Classification{RecordFailure: true}
}
