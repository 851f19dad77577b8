package events

import (
	"context"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

// NoopBus stands in when NATS is not configured; uploads fall back to
// in-process watching and pages to fixed-interval polling.
type NoopBus struct{}

func (NoopBus) PublishStatus(context.Context, domain.StatusEvent) error { return nil }

func (NoopBus) SubscribeStatus(context.Context, string, func(domain.StatusEvent)) (func(), error) {
	return func() {}, nil
}

func (NoopBus) PublishWatchRequest(context.Context, string, domain.Identity) error { return nil }

func (NoopBus) SubscribeWatchRequests(ctx context.Context, _ func(context.Context, string, domain.Identity) error) error {
	<-ctx.Done()
	return ctx.Err()
}
