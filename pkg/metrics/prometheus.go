// Package metrics provides Prometheus metrics for the voice partner service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scoreBuckets cover the 0..100 score range in tens.
var scoreBuckets = prometheus.LinearBuckets(10, 10, 10) //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Practice metrics
	attemptsScored      prometheus.Counter
	attemptsDuplicate   prometheus.Counter
	attemptScores       prometheus.Histogram
	scoringLatency      prometheus.Histogram
	scoringErrors       prometheus.Counter
	recognitionFailures *prometheus.CounterVec
	settingsUpdates     prometheus.Counter

	// Progress metrics
	learnerXP     prometheus.Gauge
	learnerStreak prometheus.Gauge

	// Line board metrics
	lineBoardUpdates  prometheus.Counter
	lineBoardLines    prometheus.Gauge
	repositoryUpdate  prometheus.Histogram
	repositoryQueries prometheus.Histogram

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "voicepartner",
		subsystem:        "practice",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.attemptsScored = auto.NewCounter(m.counterOpts("attempts_scored_total", "Total number of attempts scored"))
	m.attemptsDuplicate = auto.NewCounter(m.counterOpts("attempts_duplicate_total", "Total number of duplicate attempt submissions"))
	m.attemptScores = auto.NewHistogram(m.histogramOpts("attempt_score", "Distribution of attempt scores", scoreBuckets))
	m.scoringLatency = auto.NewHistogram(m.histogramOpts("scoring_latency_milliseconds", "Scoring latency in milliseconds", m.histogramBuckets))
	m.scoringErrors = auto.NewCounter(m.counterOpts("scoring_errors_total", "Total number of attempts that failed to score"))
	m.recognitionFailures = auto.NewCounterVec(m.counterOpts("recognition_failures_total", "Speech recognition failures by kind"), []string{"kind"})
	m.settingsUpdates = auto.NewCounter(m.counterOpts("settings_updates_total", "Total number of accepted settings changes"))

	m.learnerXP = auto.NewGauge(m.gaugeOpts("learner_xp", "Learner's total XP"))
	m.learnerStreak = auto.NewGauge(m.gaugeOpts("learner_streak_days", "Learner's current day streak"))

	m.lineBoardUpdates = auto.NewCounter(m.counterOpts("line_board_updates_total", "Total number of improved line bests"))
	m.lineBoardLines = auto.NewGauge(m.gaugeOpts("line_board_lines", "Number of lines on the board"))
	m.repositoryUpdate = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds", "Line board update latency in milliseconds", m.histogramBuckets))
	m.repositoryQueries = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds", "Line board query latency in milliseconds", m.histogramBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued attempts"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Attempt queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Total number of attempts enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Total number of attempts dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of rejected enqueues"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of running scoring workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Per-attempt worker processing time in milliseconds", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker processing errors"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"})
}

func active() bool {
	return globalManager != nil && globalManager.enabled
}

// RecordAttemptScored records one scored attempt and its score.
func RecordAttemptScored(score int) {
	if active() {
		globalManager.attemptsScored.Inc()
		globalManager.attemptScores.Observe(float64(score))
	}
}

// RecordAttemptDuplicate records a duplicate submission.
func RecordAttemptDuplicate() {
	if active() {
		globalManager.attemptsDuplicate.Inc()
	}
}

// RecordScoringLatency records how long scoring took.
func RecordScoringLatency(latencyMs float64) {
	if active() {
		globalManager.scoringLatency.Observe(latencyMs)
	}
}

// RecordScoringError records an attempt that could not be scored.
func RecordScoringError() {
	if active() {
		globalManager.scoringErrors.Inc()
	}
}

// RecordRecognitionFailure records a failed recognition session.
func RecordRecognitionFailure(kind string) {
	if active() {
		globalManager.recognitionFailures.WithLabelValues(kind).Inc()
	}
}

// RecordSettingsUpdate records an accepted settings change.
func RecordSettingsUpdate() {
	if active() {
		globalManager.settingsUpdates.Inc()
	}
}

// UpdateLearnerProgress publishes the learner's XP and streak.
func UpdateLearnerProgress(xp, streak int) {
	if active() {
		globalManager.learnerXP.Set(float64(xp))
		globalManager.learnerStreak.Set(float64(streak))
	}
}

// RecordLineBoardUpdate records an improved line best.
func RecordLineBoardUpdate() {
	if active() {
		globalManager.lineBoardUpdates.Inc()
	}
}

// UpdateLineBoardLines publishes the number of lines on the board.
func UpdateLineBoardLines(count int) {
	if active() {
		globalManager.lineBoardLines.Set(float64(count))
	}
}

// RecordRepositoryUpdateLatency records line board write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if active() {
		globalManager.repositoryUpdate.Observe(latencyMs)
	}
}

// RecordRepositoryQueryLatency records line board read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if active() {
		globalManager.repositoryQueries.Observe(latencyMs)
	}
}

// UpdateQueueSize publishes the current queue length.
func UpdateQueueSize(size int) {
	if active() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity publishes the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if active() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue records an accepted enqueue.
func RecordQueueEnqueue() {
	if active() {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue records a dequeue.
func RecordQueueDequeue() {
	if active() {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError records a rejected enqueue.
func RecordQueueEnqueueError() {
	if active() {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount publishes the number of running workers.
func UpdateWorkerCount(count int) {
	if active() {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records per-attempt worker time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if active() {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError records a worker processing error.
func RecordWorkerError() {
	if active() {
		globalManager.workerErrors.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if active() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records an HTTP request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if active() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent records an error against the component that saw it.
func RecordErrorByComponent(component, errorType string) {
	if active() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
