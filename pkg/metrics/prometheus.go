// Package metrics provides Prometheus metrics for the ladder session service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// searchWaitBuckets covers the randomized 3-7s opponent search window.
var searchWaitBuckets = []float64{500, 1000, 2000, 3000, 4000, 5000, 6000, 7000, 10000} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the ladder service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Profile resolution
	profilesResolved  *prometheus.CounterVec
	sourceFailures    *prometheus.CounterVec
	profileWritebacks prometheus.Counter
	gamesApplied      *prometheus.CounterVec
	duplicateEvents   prometheus.Counter

	// Match search
	matchTransitions *prometheus.CounterVec
	searchWait       prometheus.Histogram
	matchErrors      *prometheus.CounterVec

	// Host bridge
	bridgeFrames     *prometheus.CounterVec
	bridgeSendErrors prometheus.Counter
	bridgeConnected  prometheus.Gauge

	// Sessions and mailboxes
	sessionsActive    prometheus.Gauge
	sessionsEvicted   prometheus.Counter
	mailboxRejections prometheus.Counter
	mailboxLatency    prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "ladder",
		subsystem:        "app",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	m.profilesResolved = m.counterVec("profiles_resolved_total",
		"Profiles resolved at session start, by the source that owned the identity block", "authority")
	m.sourceFailures = m.counterVec("source_failures_total",
		"Profile source reads that failed and were treated as absent", "source", "kind")
	m.profileWritebacks = m.counter("profile_writebacks_total",
		"Resolved or updated profiles written back to the cache")
	m.gamesApplied = m.counterVec("games_applied_total",
		"Verified games applied to a profile, by result", "result")
	m.duplicateEvents = m.counter("host_events_duplicate_total",
		"Inbound host events dropped as duplicates")

	m.matchTransitions = m.counterVec("match_transitions_total",
		"Match search state transitions", "from", "to")
	m.searchWait = m.histogram("match_search_wait_milliseconds",
		"Time from search start to opponent found", searchWaitBuckets)
	m.matchErrors = m.counterVec("match_errors_total",
		"Rejected match operations, by kind", "kind")

	m.bridgeFrames = m.counterVec("bridge_frames_total",
		"Frames queued for the host bridge, by kind", "kind")
	m.bridgeSendErrors = m.counter("bridge_send_errors_total",
		"Host bridge frames that could not be queued or written")
	m.bridgeConnected = m.gauge("bridge_connections",
		"Currently connected host bridges")

	m.sessionsActive = m.gauge("sessions_active", "Live sessions")
	m.sessionsEvicted = m.counter("sessions_evicted_total", "Sessions evicted after idling")
	m.mailboxRejections = m.counter("mailbox_rejections_total",
		"Session tasks rejected because the mailbox was full or closed")
	m.mailboxLatency = m.histogram("mailbox_task_latency_milliseconds",
		"Time a session task waited plus ran", m.histogramBuckets)

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// Profile resolution

// RecordProfileResolved counts a resolution by its identity authority.
func RecordProfileResolved(authority string) {
	globalManager.profilesResolved.WithLabelValues(authority).Inc()
}

// RecordSourceFailure counts a source that was dropped as absent.
func RecordSourceFailure(source, kind string) {
	globalManager.sourceFailures.WithLabelValues(source, kind).Inc()
}

// RecordProfileWriteback counts a cache overwrite.
func RecordProfileWriteback() {
	globalManager.profileWritebacks.Inc()
}

// RecordGameApplied counts a verified game.
func RecordGameApplied(result string) {
	globalManager.gamesApplied.WithLabelValues(result).Inc()
}

// RecordDuplicateEvent counts a dropped inbound duplicate.
func RecordDuplicateEvent() {
	globalManager.duplicateEvents.Inc()
}

// Match search

// RecordMatchTransition counts a state change.
func RecordMatchTransition(from, to string) {
	globalManager.matchTransitions.WithLabelValues(from, to).Inc()
}

// RecordSearchWait observes how long a search took to find an opponent.
func RecordSearchWait(ms float64) {
	globalManager.searchWait.Observe(ms)
}

// RecordMatchError counts a rejected match operation.
func RecordMatchError(kind string) {
	globalManager.matchErrors.WithLabelValues(kind).Inc()
}

// Host bridge

// RecordBridgeFrame counts a frame handed to the bridge.
func RecordBridgeFrame(kind string) {
	globalManager.bridgeFrames.WithLabelValues(kind).Inc()
}

// RecordBridgeSendError counts a frame that was dropped.
func RecordBridgeSendError() {
	globalManager.bridgeSendErrors.Inc()
}

// UpdateBridgeConnections adjusts the connected-bridge gauge by delta.
func UpdateBridgeConnections(delta int) {
	globalManager.bridgeConnected.Add(float64(delta))
}

// Sessions

// UpdateSessionsActive sets the live session gauge.
func UpdateSessionsActive(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// RecordSessionEvicted counts an idle eviction.
func RecordSessionEvicted() {
	globalManager.sessionsEvicted.Inc()
}

// RecordMailboxRejection counts a task refused by a session mailbox.
func RecordMailboxRejection() {
	globalManager.mailboxRejections.Inc()
}

// RecordMailboxLatency observes queue wait plus run time of a session task.
func RecordMailboxLatency(ms float64) {
	globalManager.mailboxLatency.Observe(ms)
}

// HTTP

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System

// UpdateSystemMemoryUsage sets heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
