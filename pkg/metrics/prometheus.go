// Package metrics provides Prometheus metrics for the fieldtrace service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "fieldtrace"
	defaultSubsystem = "analytics"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Trace pipeline
	tracesSubmitted prometheus.Counter
	tracesDuplicate prometheus.Counter
	parseErrors     *prometheus.CounterVec
	parseLatency    prometheus.Histogram
	encodedBytes    prometheus.Histogram
	analyses        *prometheus.CounterVec
	analysisLatency prometheus.Histogram

	// Ranking store
	teamsTotal     prometheus.Gauge
	reportsTotal   prometheus.Gauge
	rankingUpdates prometheus.Counter
	storeLatency   *prometheus.HistogramVec

	// Queue
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueDequeued  prometheus.Counter
	queueRejected  prometheus.Counter
	queueWaitTime  prometheus.Histogram
	queueUtilRatio prometheus.Gauge

	// Workers
	workerCount  prometheus.Gauge
	workerActive prometheus.Gauge
	workerErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide collectors

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // collectors must exist before first use
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.tracesSubmitted = auto.NewCounter(m.counter("traces_submitted_total", "Traces accepted for analysis"))
	m.tracesDuplicate = auto.NewCounter(m.counter("traces_duplicate_total", "Submissions dropped as duplicates"))
	m.parseErrors = auto.NewCounterVec(m.counter("parse_errors_total", "Trace parse failures by kind"), []string{"kind"})
	m.parseLatency = auto.NewHistogram(m.histogram("parse_latency_milliseconds", "Time to parse and expand a trace", nil))
	m.encodedBytes = auto.NewHistogram(m.histogram("encoded_trace_bytes", "Size of serialized compressed traces",
		prometheus.ExponentialBuckets(64, 2, 10)))
	m.analyses = auto.NewCounterVec(m.counter("analyses_total", "Completed analyses by season"), []string{"season"})
	m.analysisLatency = auto.NewHistogram(m.histogram("analysis_latency_milliseconds", "Time to analyze one trace", nil))

	m.teamsTotal = auto.NewGauge(m.gauge("teams_total", "Teams with at least one analyzed match"))
	m.reportsTotal = auto.NewGauge(m.gauge("reports_total", "Match reports held by the ranking store"))
	m.rankingUpdates = auto.NewCounter(m.counter("ranking_updates_total", "Reports recorded into the ranking store"))
	m.storeLatency = auto.NewHistogramVec(m.histogram("store_latency_milliseconds", "Ranking store operation latency", nil),
		[]string{"operation"})

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Submissions waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Submissions enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Submissions dequeued"))
	m.queueRejected = auto.NewCounter(m.counter("queue_rejected_total", "Submissions rejected because the queue was full"))
	m.queueWaitTime = auto.NewHistogram(m.histogram("queue_wait_milliseconds", "Time a submission spent queued", nil))
	m.queueUtilRatio = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue size divided by capacity"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured analysis workers"))
	m.workerActive = auto.NewGauge(m.gauge("worker_active", "Workers currently analyzing"))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Analyses that failed inside a worker"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration", nil),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_total", "Errors by component and type"),
		[]string{"component", "type"})
}

// RecordTraceSubmitted counts an accepted submission and its encoded size.
func RecordTraceSubmitted(encodedBytes int) {
	if !globalManager.enabled {
		return
	}
	globalManager.tracesSubmitted.Inc()
	globalManager.encodedBytes.Observe(float64(encodedBytes))
}

// RecordTraceDuplicate counts a submission dropped by dedupe.
func RecordTraceDuplicate() {
	if globalManager.enabled {
		globalManager.tracesDuplicate.Inc()
	}
}

// RecordParseError counts a parse failure of the given kind.
func RecordParseError(kind string) {
	if globalManager.enabled {
		globalManager.parseErrors.WithLabelValues(kind).Inc()
	}
}

// RecordParseLatency records parse latency in milliseconds.
func RecordParseLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.parseLatency.Observe(latencyMs)
	}
}

// RecordAnalysis counts a completed analysis and its latency in milliseconds.
func RecordAnalysis(season string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.analyses.WithLabelValues(season).Inc()
	globalManager.analysisLatency.Observe(latencyMs)
}

// UpdateTeamsTotal sets the number of ranked teams.
func UpdateTeamsTotal(count int) {
	if globalManager.enabled {
		globalManager.teamsTotal.Set(float64(count))
	}
}

// UpdateReportsTotal sets the number of stored reports.
func UpdateReportsTotal(count int) {
	if globalManager.enabled {
		globalManager.reportsTotal.Set(float64(count))
	}
}

// RecordRankingUpdate counts a report recorded into the store.
func RecordRankingUpdate() {
	if globalManager.enabled {
		globalManager.rankingUpdates.Inc()
	}
}

// RecordStoreLatency records a ranking store operation latency in milliseconds.
func RecordStoreLatency(operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(ratio float64) {
	if globalManager.enabled {
		globalManager.queueUtilRatio.Set(ratio)
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueRejected increments the backpressure counter.
func RecordQueueRejected() {
	if globalManager.enabled {
		globalManager.queueRejected.Inc()
	}
}

// RecordQueueWait records how long a submission waited, in milliseconds.
func RecordQueueWait(latencyMs float64) {
	if globalManager.enabled {
		globalManager.queueWaitTime.Observe(latencyMs)
	}
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// AddWorkerActive adjusts the number of busy workers by delta.
func AddWorkerActive(delta int) {
	if globalManager.enabled {
		globalManager.workerActive.Add(float64(delta))
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// RecordHTTPRequest records an HTTP request and its duration in milliseconds.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// SetEnabled toggles recording for the process-wide manager.
func SetEnabled(enabled bool) { globalManager.enabled = enabled }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards RegisterRuntimeCollectors

// RegisterRuntimeCollectors adds the Go runtime and process collectors to
// the custom registry. Safe to call more than once.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
