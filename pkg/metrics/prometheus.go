// Package metrics provides Prometheus metrics for the cascade allocation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Allocation
	allocationRuns      prometheus.Counter
	allocationPasses    prometheus.Histogram
	allocationRemovals  prometheus.Counter
	allocationDemotions prometheus.Counter
	allocationDuration  prometheus.Histogram
	trackCount          prometheus.Gauge
	trackRecords        *prometheus.GaugeVec
	trackContenders     *prometheus.GaugeVec

	// Loading
	recordsLoaded  prometheus.Counter
	recordsSkipped *prometheus.CounterVec
	loadLatency    prometheus.Histogram
	loadErrors     prometheus.Counter

	// Snapshot publishing
	snapshotCount          prometheus.Counter
	snapshotLastUnix       prometheus.Gauge
	snapshotPublishLatency prometheus.Histogram

	// Queue
	queueCapacity     prometheus.Gauge
	queueSize         prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cascade",
		subsystem:        "allocation",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.allocationRuns = m.counter("runs_total", "Total number of completed allocation runs")
	m.allocationPasses = m.histogram("passes", "Passes needed to reach the fixed point",
		[]float64{1, 2, 3, 5, 8, 13, 21, 34, 55})
	m.allocationRemovals = m.counter("removals_total", "Records removed because the applicant won another track")
	m.allocationDemotions = m.counter("demotions_total", "Priority decrements applied during allocation")
	m.allocationDuration = m.histogram("duration_milliseconds", "Allocation run duration in milliseconds", m.histogramBuckets)
	m.trackCount = m.gauge("tracks", "Number of tracks in the latest allocation")
	m.trackRecords = m.gaugeVec("track_records", "Records left in each track after allocation", "track")
	m.trackContenders = m.gaugeVec("track_contenders", "First-priority contenders in each track after allocation", "track")

	m.recordsLoaded = m.counter("records_loaded_total", "Applicant records accepted by the loader")
	m.recordsSkipped = m.counterVec("records_skipped_total", "Source rows skipped by the loader", "reason")
	m.loadLatency = m.histogram("load_latency_milliseconds", "Time to load and parse one track file", m.histogramBuckets)
	m.loadErrors = m.counter("load_errors_total", "Track files that failed to load")

	m.snapshotCount = m.counter("snapshot_count_total", "Total number of snapshots published")
	m.snapshotLastUnix = m.gauge("snapshot_last_unix", "Unix timestamp of the last snapshot publish")
	m.snapshotPublishLatency = m.histogram("snapshot_publish_latency_milliseconds", "Snapshot publish latency in milliseconds", m.histogramBuckets)

	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the load job queue")
	m.queueSize = m.gauge("queue_size", "Current number of queued load jobs")
	m.queueUtilization = m.gauge("queue_utilization", "Queue fill ratio between 0 and 1")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Load jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Load jobs dequeued")
	m.queueEnqueueError = m.counter("queue_enqueue_errors_total", "Load jobs rejected by the queue")

	m.workerActiveCount = m.gauge("worker_active_count", "Number of running loader workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Loader worker job latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Loader worker job failures")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of failed operations in milliseconds", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAllocationRun records one finished allocation.
func RecordAllocationRun(durationMs float64, passes, removals, demotions int) {
	globalManager.allocationRuns.Inc()
	globalManager.allocationDuration.Observe(durationMs)
	globalManager.allocationPasses.Observe(float64(passes))
	globalManager.allocationRemovals.Add(float64(removals))
	globalManager.allocationDemotions.Add(float64(demotions))
}

// UpdateTrackCount sets the number of tracks in the latest allocation.
func UpdateTrackCount(count int) {
	globalManager.trackCount.Set(float64(count))
}

// UpdateTrackSizes sets the final record and contender counts for a track.
func UpdateTrackSizes(track string, records, contenders int) {
	globalManager.trackRecords.WithLabelValues(track).Set(float64(records))
	globalManager.trackContenders.WithLabelValues(track).Set(float64(contenders))
}

// RecordRecordsLoaded adds n accepted records.
func RecordRecordsLoaded(n int) {
	globalManager.recordsLoaded.Add(float64(n))
}

// RecordRecordsSkipped adds n source rows skipped for reason.
func RecordRecordsSkipped(reason string, n int) {
	globalManager.recordsSkipped.WithLabelValues(reason).Add(float64(n))
}

// RecordLoadLatency records how long one track took to load.
func RecordLoadLatency(latencyMs float64) {
	globalManager.loadLatency.Observe(latencyMs)
}

// RecordLoadError counts a failed track load.
func RecordLoadError() {
	globalManager.loadErrors.Inc()
}

// RecordSnapshotPublish records a snapshot publish at unix time ts.
func RecordSnapshotPublish(latencyMs float64, ts int64) {
	globalManager.snapshotCount.Inc()
	globalManager.snapshotLastUnix.Set(float64(ts))
	globalManager.snapshotPublishLatency.Observe(latencyMs)
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a delivered job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueError.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records one job's processing time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry holding the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
