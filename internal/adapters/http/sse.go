package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

const heartbeatInterval = 15 * time.Second

// streamEvents pushes document status transitions for a project over
// SSE. Clients that cannot hold the stream open fall back to polling
// the document list.
func (rt *Router) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	projectID := r.PathValue("projectID")
	ctx := r.Context()

	eventCh := make(chan domain.StatusEvent, 16)
	unsubscribe, err := rt.events.SubscribeStatus(ctx, projectID, func(event domain.StatusEvent) {
		select {
		case eventCh <- event:
		default:
			slog.Warn("sse_event_dropped", "project_id", projectID)
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	defer unsubscribe()

	if rt.metrics != nil {
		rt.metrics.SSEOpened()
		defer rt.metrics.SSEClosed()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event := <-eventCh:
			payload, err := json.Marshal(event)
			if err != nil {
				slog.Error("sse_marshal", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
