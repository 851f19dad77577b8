package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WatcherMetrics instruments the document status watcher. It satisfies
// the watch observer contract, so the poll loop reports through it.
type WatcherMetrics struct {
	registry *prometheus.Registry

	pollCycles      *prometheus.CounterVec
	pollDuration    prometheus.Histogram
	transitions     *prometheus.CounterVec
	watchedProjects prometheus.Gauge
	watchesTotal    *prometheus.CounterVec
}

func NewWatcherMetrics(service string) *WatcherMetrics {
	registry := prometheus.NewRegistry()
	serviceLabel := prometheus.Labels{"service": service}

	pollCycles := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "osita",
			Subsystem:   "watcher",
			Name:        "poll_cycles_total",
			Help:        "Document list polls by outcome.",
			ConstLabels: serviceLabel,
		},
		[]string{"status"},
	)
	pollDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "osita",
			Subsystem:   "watcher",
			Name:        "poll_duration_seconds",
			Help:        "Duration of a single document list poll.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: serviceLabel,
		},
	)
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "osita",
			Subsystem:   "watcher",
			Name:        "status_transitions_total",
			Help:        "Observed document status transitions by target status.",
			ConstLabels: serviceLabel,
		},
		[]string{"to"},
	)
	watchedProjects := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "osita",
			Subsystem:   "watcher",
			Name:        "watched_projects",
			Help:        "Projects currently being watched.",
			ConstLabels: serviceLabel,
		},
	)
	watchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "osita",
			Subsystem:   "watcher",
			Name:        "watches_total",
			Help:        "Completed watch sessions by outcome.",
			ConstLabels: serviceLabel,
		},
		[]string{"status"},
	)

	registry.MustRegister(pollCycles, pollDuration, transitions, watchedProjects, watchesTotal)

	return &WatcherMetrics{
		registry:        registry,
		pollCycles:      pollCycles,
		pollDuration:    pollDuration,
		transitions:     transitions,
		watchedProjects: watchedProjects,
		watchesTotal:    watchesTotal,
	}
}

func (m *WatcherMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WatcherMetrics) PollObserved(took time.Duration, err error) {
	m.pollCycles.WithLabelValues(outcome(err)).Inc()
	m.pollDuration.Observe(took.Seconds())
}

func (m *WatcherMetrics) TransitionObserved(to string) {
	m.transitions.WithLabelValues(to).Inc()
}

func (m *WatcherMetrics) WatchStarted() {
	m.watchedProjects.Inc()
}

func (m *WatcherMetrics) WatchFinished(err error) {
	m.watchedProjects.Dec()
	m.watchesTotal.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
