// Package metrics provides Prometheus metrics for the hiscores scraper.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	ResultOK      = "ok"
	ResultAborted = "aborted"
	ResultFailed  = "failed"
)

// Manager manages all Prometheus metrics for the hiscores service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Cycle Metrics - one cycle scrapes every roster once
	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	subjectsTotal *prometheus.CounterVec
	recordsKept   *prometheus.CounterVec

	// Scrape Metrics - per subject fetch and extraction
	fetchLatency    prometheus.Histogram
	fetchFailures   *prometheus.CounterVec
	extractFailures *prometheus.CounterVec
	malformedLines  *prometheus.CounterVec

	// Snapshot Metrics - persisted output
	snapshotRecords      prometheus.Gauge
	snapshotLastUnix     prometheus.Gauge
	snapshotWriteLatency prometheus.Histogram
	snapshotWriteErrors  prometheus.Counter
	publishTotal         *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager and the registry it registers on.
var (
	globalManager  atomic.Pointer[Manager]             //nolint:gochecknoglobals // intentional global for singleton metrics manager
	customRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // intentional global for metrics registry
)

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure rebuilds the global metrics on a fresh custom registry with opts
// applied. Call it at startup, before the registry is served.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	manager := NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry.Store(registry)
	globalManager.Store(manager)
}

func current() *Manager {
	return globalManager.Load()
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hiscores",
		subsystem:        "scraper",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.cyclesTotal = auto.NewCounterVec(
		m.counterOpts("cycles_total", "Total number of scrape cycles by result"),
		[]string{"result"},
	)
	m.cycleDuration = auto.NewHistogram(m.histogramOpts(
		"cycle_duration_milliseconds",
		"Wall time of a full scrape cycle in milliseconds",
		prometheus.ExponentialBuckets(100, 4, 10),
	))
	m.subjectsTotal = auto.NewCounterVec(
		m.counterOpts("subjects_total", "Total number of subjects attempted by group"),
		[]string{"group"},
	)
	m.recordsKept = auto.NewCounterVec(
		m.counterOpts("records_kept_total", "Total number of records that reached a snapshot by group"),
		[]string{"group"},
	)

	m.fetchLatency = auto.NewHistogram(m.histogramOpts(
		"fetch_latency_milliseconds",
		"Profile page fetch latency in milliseconds",
		m.histogramBuckets,
	))
	m.fetchFailures = auto.NewCounterVec(
		m.counterOpts("fetch_failures_total", "Total number of failed profile fetches by reason"),
		[]string{"reason"},
	)
	m.extractFailures = auto.NewCounterVec(
		m.counterOpts("extract_failures_total", "Total number of failed extractions by reason"),
		[]string{"reason"},
	)
	m.malformedLines = auto.NewCounterVec(
		m.counterOpts("roster_malformed_lines_total", "Total number of skipped roster lines by group"),
		[]string{"group"},
	)

	m.snapshotRecords = auto.NewGauge(m.gaugeOpts(
		"snapshot_records",
		"Number of records in the latest snapshot",
	))
	m.snapshotLastUnix = auto.NewGauge(m.gaugeOpts(
		"snapshot_last_unix_seconds",
		"Unix time of the latest snapshot write",
	))
	m.snapshotWriteLatency = auto.NewHistogram(m.histogramOpts(
		"snapshot_write_latency_milliseconds",
		"Snapshot write latency in milliseconds",
		m.histogramBuckets,
	))
	m.snapshotWriteErrors = auto.NewCounter(m.counterOpts(
		"snapshot_write_errors_total",
		"Total number of failed snapshot writes",
	))
	m.publishTotal = auto.NewCounterVec(
		m.counterOpts("publish_total", "Total number of snapshot publish attempts by result"),
		[]string{"result"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component and error type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes",
		"System memory usage in bytes",
	))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count",
		"Number of goroutines",
	))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// Cycle Metrics Functions.

// RecordCycle counts a finished cycle and observes its duration.
func RecordCycle(result string, took time.Duration) {
	current().cyclesTotal.WithLabelValues(result).Inc()
	current().cycleDuration.Observe(float64(took.Milliseconds()))
}

// RecordSubject counts a subject attempted in group.
func RecordSubject(group string) {
	current().subjectsTotal.WithLabelValues(group).Inc()
}

// RecordRecordKept counts a record that made it into a snapshot.
func RecordRecordKept(group string) {
	current().recordsKept.WithLabelValues(group).Inc()
}

// Scrape Metrics Functions.

// RecordFetchLatency records profile fetch latency in milliseconds.
func RecordFetchLatency(latencyMs float64) {
	current().fetchLatency.Observe(latencyMs)
}

// RecordFetchFailure counts a failed fetch.
func RecordFetchFailure(reason string) {
	current().fetchFailures.WithLabelValues(reason).Inc()
}

// RecordExtractFailure counts a failed extraction.
func RecordExtractFailure(reason string) {
	current().extractFailures.WithLabelValues(reason).Inc()
}

// RecordMalformedLine counts a skipped roster line.
func RecordMalformedLine(group string) {
	current().malformedLines.WithLabelValues(group).Inc()
}

// Snapshot Metrics Functions.

// UpdateSnapshot sets the snapshot size and write time.
func UpdateSnapshot(records int, at time.Time) {
	current().snapshotRecords.Set(float64(records))
	current().snapshotLastUnix.Set(float64(at.Unix()))
}

// RecordSnapshotWriteLatency records snapshot write latency in milliseconds.
func RecordSnapshotWriteLatency(latencyMs float64) {
	current().snapshotWriteLatency.Observe(latencyMs)
}

// RecordSnapshotWriteError increments the snapshot write error counter.
func RecordSnapshotWriteError() {
	current().snapshotWriteErrors.Inc()
}

// RecordPublish counts a publish attempt.
func RecordPublish(result string) {
	current().publishTotal.WithLabelValues(result).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	current().errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	current().errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	current().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	current().errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	current().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	current().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	current().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry.Load()
}
