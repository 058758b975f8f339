package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webotixs"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	aggregateOps       *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec

	clientsOnboarded  prometheus.Counter
	taskStatusChanges *prometheus.CounterVec
	projectsCompleted prometheus.Counter

	realtimeClients prometheus.Gauge
	realtimeEvents  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api",
			Name: "requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api",
			Name:    "request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api",
			Name: "inflight_requests",
			Help: "Requests currently being served",
		}),
		aggregateOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "aggregate",
			Name:    "operation_duration_seconds",
			Help:    "Transactional aggregate write latency by operation and outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		aggregateConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate",
			Name: "conflicts_total",
			Help: "Aggregate writes rejected as conflicts",
		}, []string{"op"}),
		aggregateRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregate",
			Name: "retryable_failures_total",
			Help: "Aggregate writes that failed with a transient error",
		}, []string{"op"}),
		clientsOnboarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "workflow",
			Name: "clients_onboarded_total",
			Help: "Clients provisioned with a project and stage tasks",
		}),
		taskStatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "workflow",
			Name: "task_status_changes_total",
			Help: "Task status mutations by new status",
		}, []string{"status"}),
		projectsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "workflow",
			Name: "projects_completed_total",
			Help: "Projects that reached 100% progress",
		}),
		realtimeClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "realtime",
			Name: "connected_clients",
			Help: "Open event-stream connections",
		}),
		realtimeEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "realtime",
			Name: "events_published_total",
			Help: "Realtime events published by type",
		}, []string{"event"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.WithLabelValues(strings.TrimSpace(op), strings.TrimSpace(status)).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m != nil {
		m.aggregateConflicts.WithLabelValues(strings.TrimSpace(op)).Inc()
	}
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m != nil {
		m.aggregateRetries.WithLabelValues(strings.TrimSpace(op)).Inc()
	}
}

func (m *Metrics) IncClientOnboarded() {
	if m != nil {
		m.clientsOnboarded.Inc()
	}
}

func (m *Metrics) IncTaskStatusChange(status string) {
	if m != nil {
		m.taskStatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncProjectCompleted() {
	if m != nil {
		m.projectsCompleted.Inc()
	}
}

func (m *Metrics) RealtimeClientsInc() {
	if m != nil {
		m.realtimeClients.Inc()
	}
}

func (m *Metrics) RealtimeClientsDec() {
	if m != nil {
		m.realtimeClients.Dec()
	}
}

func (m *Metrics) IncRealtimeEvent(event string) {
	if m != nil {
		m.realtimeEvents.WithLabelValues(event).Inc()
	}
}
