package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebMetrics instruments the gateway's HTTP surface plus the export and
// validation flows.
type WebMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	exportsTotal      *prometheus.CounterVec
	exportsBlocked    prometheus.Counter
	validationTotal   *prometheus.CounterVec
	validationStale   prometheus.Counter
	uploadsTotal      *prometheus.CounterVec
	uploadFilesTotal  prometheus.Counter
	fieldActionsTotal *prometheus.CounterVec
	sseSubscribers    prometheus.Gauge
}

func NewWebMetrics(service string) *WebMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osita",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "osita",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "osita",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osita",
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Export attempts by format and outcome.",
		},
		[]string{"service", "format", "status"},
	)
	exportsBlocked := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "osita",
			Subsystem:   "export",
			Name:        "blocked_total",
			Help:        "Export attempts rejected by validation gating before any backend call.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	validationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osita",
			Subsystem: "validation",
			Name:      "requests_total",
			Help:      "Validation report fetches by outcome.",
		},
		[]string{"service", "status"},
	)
	validationStale := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "osita",
			Subsystem:   "validation",
			Name:        "stale_served_total",
			Help:        "Validation reports served from cache after a fetch failure.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osita",
			Subsystem: "upload",
			Name:      "batches_total",
			Help:      "Upload batches by outcome.",
		},
		[]string{"service", "status"},
	)
	uploadFilesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "osita",
			Subsystem:   "upload",
			Name:        "files_total",
			Help:        "Files submitted to the backend.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	fieldActionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "osita",
			Subsystem: "review",
			Name:      "field_actions_total",
			Help:      "Field review actions by kind.",
		},
		[]string{"service", "action"},
	)
	sseSubscribers := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "osita",
			Subsystem:   "events",
			Name:        "sse_subscribers",
			Help:        "Open SSE status streams.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		exportsTotal,
		exportsBlocked,
		validationTotal,
		validationStale,
		uploadsTotal,
		uploadFilesTotal,
		fieldActionsTotal,
		sseSubscribers,
	)

	return &WebMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		exportsTotal:      exportsTotal,
		exportsBlocked:    exportsBlocked,
		validationTotal:   validationTotal,
		validationStale:   validationStale,
		uploadsTotal:      uploadsTotal,
		uploadFilesTotal:  uploadFilesTotal,
		fieldActionsTotal: fieldActionsTotal,
		sseSubscribers:    sseSubscribers,
	}
}

func (m *WebMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WebMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(service, r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps label cardinality bounded by collapsing ids.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if len(part) >= 8 && strings.Count(part, "-") >= 2 {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func (m *WebMetrics) RecordExport(service, format string, err error) {
	m.exportsTotal.WithLabelValues(service, format, outcome(err)).Inc()
}

func (m *WebMetrics) RecordExportBlocked() {
	m.exportsBlocked.Inc()
}

func (m *WebMetrics) RecordValidation(service string, stale bool, err error) {
	m.validationTotal.WithLabelValues(service, outcome(err)).Inc()
	if stale {
		m.validationStale.Inc()
	}
}

func (m *WebMetrics) RecordUpload(service string, files int, err error) {
	m.uploadsTotal.WithLabelValues(service, outcome(err)).Inc()
	if err == nil {
		m.uploadFilesTotal.Add(float64(files))
	}
}

func (m *WebMetrics) RecordFieldAction(service, action string) {
	m.fieldActionsTotal.WithLabelValues(service, action).Inc()
}

func (m *WebMetrics) SSEOpened() { m.sseSubscribers.Inc() }
func (m *WebMetrics) SSEClosed() { m.sseSubscribers.Dec() }

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
