// Package metrics provides Prometheus metrics for the match simulation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	goalBuckets      []float64
	registry         prometheus.Registerer

	// Match lifecycle
	matchesSubmitted  prometheus.Counter
	matchesDuplicate  prometheus.Counter
	matchesSimulated  prometheus.Counter
	matchesFailed     prometheus.Counter
	simulationLatency prometheus.Histogram
	goalsPerMatch     prometheus.Histogram
	goalsCapped       prometheus.Counter
	eventsByKind      *prometheus.CounterVec

	// Store
	matchesStored prometheus.Gauge
	storeLatency  *prometheus.HistogramVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec

	// Playback
	playbackSessions prometheus.Gauge
	websocketClients prometheus.Gauge
	framesSent       prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry exposed on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dreamxi",
		subsystem:        "match",
		histogramBuckets: prometheus.DefBuckets,
		goalBuckets:      []float64{0, 1, 2, 3, 4, 5, 6},
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.matchesSubmitted = m.counter("matches_submitted_total", "Total number of matches accepted for simulation")
	m.matchesDuplicate = m.counter("matches_duplicate_total", "Total number of submissions answered from the idempotency index")
	m.matchesSimulated = m.counter("matches_simulated_total", "Total number of matches simulated to completion")
	m.matchesFailed = m.counter("matches_failed_total", "Total number of matches that failed to simulate or store")
	m.simulationLatency = m.histogram("simulation_latency_milliseconds", "Time spent simulating one match", m.histogramBuckets)
	m.goalsPerMatch = m.histogram("goals_per_match", "Goals scored per simulated match", m.goalBuckets)
	m.goalsCapped = m.counter("goals_capped_total", "Goals rewritten into off-target shots by the goal cap")
	m.eventsByKind = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_total",
		Help:      "Simulated match events by kind",
	}, []string{"kind"})

	m.matchesStored = m.gauge("matches_stored", "Number of matches held by the store")
	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_operation_latency_milliseconds",
		Help:      "Match store operation latency by backend and operation",
		Buckets:   m.histogramBuckets,
	}, []string{"backend", "operation"})

	m.queueSize = m.gauge("queue_size", "Current number of queued simulation jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued simulation jobs")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Number of running simulation workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "End-to-end job processing latency", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed jobs")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.playbackSessions = m.gauge("playback_sessions", "Number of running playback sessions")
	m.websocketClients = m.gauge("websocket_clients", "Number of connected websocket clients")
	m.framesSent = m.counter("playback_frames_sent_total", "Total number of playback frames written to clients")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordMatchSubmitted increments the submitted matches counter.
func RecordMatchSubmitted() {
	globalManager.matchesSubmitted.Inc()
}

// RecordMatchDuplicate increments the duplicate submission counter.
func RecordMatchDuplicate() {
	globalManager.matchesDuplicate.Inc()
}

// RecordMatchSimulated records a completed simulation.
func RecordMatchSimulated(goals, capped int, latencyMs float64) {
	globalManager.matchesSimulated.Inc()
	globalManager.goalsPerMatch.Observe(float64(goals))
	globalManager.goalsCapped.Add(float64(capped))
	globalManager.simulationLatency.Observe(latencyMs)
}

// RecordMatchFailed increments the failed matches counter.
func RecordMatchFailed() {
	globalManager.matchesFailed.Inc()
}

// RecordEvent counts one simulated event of kind.
func RecordEvent(kind string) {
	globalManager.eventsByKind.WithLabelValues(kind).Inc()
}

// UpdateMatchesStored sets the number of stored matches.
func UpdateMatchesStored(count int) {
	globalManager.matchesStored.Set(float64(count))
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(backend, operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(backend, operation).Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Playback Metrics Functions.

// PlaybackStarted increments the running playback gauge.
func PlaybackStarted() {
	globalManager.playbackSessions.Inc()
}

// PlaybackStopped decrements the running playback gauge.
func PlaybackStopped() {
	globalManager.playbackSessions.Dec()
}

// WebsocketConnected increments the connected clients gauge.
func WebsocketConnected() {
	globalManager.websocketClients.Inc()
}

// WebsocketDisconnected decrements the connected clients gauge.
func WebsocketDisconnected() {
	globalManager.websocketClients.Dec()
}

// RecordFrameSent counts a playback frame written to a client.
func RecordFrameSent() {
	globalManager.framesSent.Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
