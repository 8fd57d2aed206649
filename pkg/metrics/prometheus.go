// Package metrics provides Prometheus metrics for the glyco scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics
	predictions         *prometheus.CounterVec
	validationFailures  prometheus.Counter
	derivedRejections   prometheus.Counter
	inferenceDuration   prometheus.Histogram
	inferenceErrors     prometheus.Counter
	probabilityObserved prometheus.Histogram

	// Model singleton state
	modelLoaded       prometheus.Gauge
	modelLoadFailures prometheus.Counter

	// Record store metrics
	recordsCreated  prometheus.Counter
	recordsTotal    prometheus.Gauge
	storeOpDuration *prometheus.HistogramVec
	storeErrors     prometheus.Counter

	// Report exporter metrics
	reportsGenerated *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Process metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance on a private registry, so the default Go
// collectors never mix into our scrape output.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "glyco",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Total number of scored requests, labeled by risk level",
	}, []string{"risk_level"})

	m.validationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of requests rejected by field validation",
	})

	m.derivedRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "derived_value_rejections_total",
		Help:      "Total number of requests rejected for an implausible derived BMI",
	})

	m.inferenceDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_duration_ms",
		Help:      "Classifier inference latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.inferenceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_errors_total",
		Help:      "Total number of failed inference calls",
	})

	m.probabilityObserved = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "probability",
		Help:      "Distribution of predicted probabilities",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.modelLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_loaded",
		Help:      "Whether the classifier artifact is loaded (1) or not (0)",
	})

	m.modelLoadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_load_failures_total",
		Help:      "Total number of failed classifier artifact loads",
	})

	m.recordsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "records_created_total",
		Help:      "Total number of prediction records persisted",
	})

	m.recordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "records_total",
		Help:      "Number of prediction records in the store",
	})

	m.storeOpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "op_duration_ms",
		Help:      "Record store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Total number of record store failures",
	})

	m.reportsGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "report",
		Name:      "generated_total",
		Help:      "Total number of generated reports, labeled by format",
	}, []string{"format"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "Total number of HTTP error responses",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of live goroutines",
	})
}

// RecordPrediction counts a scored request by risk level.
func RecordPrediction(riskLevel string) {
	globalManager.predictions.WithLabelValues(riskLevel).Inc()
}

// ObserveProbability records a predicted probability.
func ObserveProbability(prob float64) {
	globalManager.probabilityObserved.Observe(prob)
}

// RecordValidationFailure counts a request rejected by validation.
func RecordValidationFailure() {
	globalManager.validationFailures.Inc()
}

// RecordDerivedValueRejection counts an implausible-BMI rejection.
func RecordDerivedValueRejection() {
	globalManager.derivedRejections.Inc()
}

// ObserveInferenceDuration records classifier latency.
func ObserveInferenceDuration(latencyMs float64) {
	globalManager.inferenceDuration.Observe(latencyMs)
}

// RecordInferenceError counts a failed inference call.
func RecordInferenceError() {
	globalManager.inferenceErrors.Inc()
}

// SetModelLoaded flips the model availability gauge.
func SetModelLoaded(loaded bool) {
	if loaded {
		globalManager.modelLoaded.Set(1)
		return
	}
	globalManager.modelLoaded.Set(0)
}

// RecordModelLoadFailure counts a failed artifact load.
func RecordModelLoadFailure() {
	globalManager.modelLoadFailures.Inc()
}

// RecordRecordCreated counts a persisted prediction record.
func RecordRecordCreated() {
	globalManager.recordsCreated.Inc()
}

// UpdateRecordsTotal sets the stored record count gauge.
func UpdateRecordsTotal(count int) {
	globalManager.recordsTotal.Set(float64(count))
}

// ObserveStoreOp records a store operation latency.
func ObserveStoreOp(op string, latencyMs float64) {
	globalManager.storeOpDuration.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a record store failure.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordReport counts a generated report by format.
func RecordReport(format string) {
	globalManager.reportsGenerated.WithLabelValues(format).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry exposes the private registry for the metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
