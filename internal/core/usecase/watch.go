package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// StatusWatcher polls a project's documents until every one reaches a
// terminal status, publishing each observed transition. A project with
// zero documents, or all documents already terminal, never starts the
// poll loop.
type StatusWatcher struct {
	gateway  ports.BackendGateway
	events   ports.StatusEventBus
	cache    ports.QueryCache
	interval time.Duration
	limiter  *rate.Limiter
	observer WatchObserver

	// now and sleep are swapped in tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// WatchObserver receives poll and transition signals for instrumentation.
type WatchObserver interface {
	PollObserved(took time.Duration, err error)
	TransitionObserved(to string)
}

func NewStatusWatcher(gateway ports.BackendGateway, events ports.StatusEventBus, cache ports.QueryCache, interval time.Duration, pollsPerSecond float64) *StatusWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if pollsPerSecond <= 0 {
		pollsPerSecond = 10
	}
	return &StatusWatcher{
		gateway:  gateway,
		events:   events,
		cache:    cache,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Limit(pollsPerSecond), 1),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func (w *StatusWatcher) WithObserver(observer WatchObserver) *StatusWatcher {
	w.observer = observer
	return w
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Watch blocks until all documents in the project are terminal or the
// context ends. The shared limiter keeps many watched projects from
// stampeding the backend.
func (w *StatusWatcher) Watch(ctx context.Context, ident domain.Identity, projectID string) error {
	if projectID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "watch", fmt.Errorf("empty project id"))
	}

	docs, err := w.poll(ctx, ident, projectID)
	if err != nil {
		return fmt.Errorf("initial document snapshot: %w", err)
	}
	if allTerminal(docs) {
		return nil
	}

	known := statusByID(docs)
	for {
		if err := w.sleep(ctx, w.interval); err != nil {
			return err
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		docs, err = w.poll(ctx, ident, projectID)
		if err != nil {
			// Transient poll failures keep the loop alive; the next tick retries.
			slog.Warn("watch_poll_failed", "project_id", projectID, "error", err)
			continue
		}

		w.publishTransitions(ctx, projectID, known, docs)
		if w.cache != nil {
			w.cache.Invalidate(documentsKey(projectID))
		}
		if allTerminal(docs) {
			return nil
		}
	}
}

func (w *StatusWatcher) poll(ctx context.Context, ident domain.Identity, projectID string) ([]domain.Document, error) {
	start := w.now()
	docs, err := w.gateway.ListDocuments(ctx, ident, projectID)
	if w.observer != nil {
		w.observer.PollObserved(w.now().Sub(start), err)
	}
	return docs, err
}

func (w *StatusWatcher) publishTransitions(ctx context.Context, projectID string, known map[string]domain.DocumentStatus, docs []domain.Document) {
	for _, doc := range docs {
		prev, seen := known[doc.ID]
		if seen && prev == doc.Status {
			continue
		}
		known[doc.ID] = doc.Status
		if w.observer != nil {
			w.observer.TransitionObserved(string(doc.Status))
		}
		if w.events == nil {
			continue
		}
		event := domain.StatusEvent{
			ProjectID:  projectID,
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			From:       prev,
			To:         doc.Status,
			ObservedAt: w.now().UTC(),
		}
		if err := w.events.PublishStatus(ctx, event); err != nil {
			slog.Warn("status_event_publish_failed", "document_id", doc.ID, "error", err)
		}
	}
}

func allTerminal(docs []domain.Document) bool {
	for _, doc := range docs {
		if !doc.Status.IsTerminal() {
			return false
		}
	}
	return true
}

func statusByID(docs []domain.Document) map[string]domain.DocumentStatus {
	statuses := make(map[string]domain.DocumentStatus, len(docs))
	for _, doc := range docs {
		statuses[doc.ID] = doc.Status
	}
	return statuses
}
