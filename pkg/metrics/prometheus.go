// Package metrics provides Prometheus metrics for the CRUX moment-difficulty engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the CRUX service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Compute pipeline metrics - the core of the engine
	computesTotal     prometheus.Counter
	computeErrors     *prometheus.CounterVec
	computeDuration   prometheus.Histogram
	compositeScores   prometheus.Histogram
	momentsByBand     *prometheus.CounterVec

	// Cache metrics
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	cacheStaleFallbacks prometheus.Counter
	cacheEvictions      prometheus.Counter
	cacheEntries        prometheus.Gauge

	// Upstream feed metrics
	feedRequests prometheus.Counter
	feedDuration prometheus.Histogram
	feedTimeouts prometheus.Counter
	feedRetries  prometheus.Counter

	// Persistence metrics
	momentAppends      prometheus.Counter
	momentAppendErrors prometheus.Counter
	summaryMerges      prometheus.Counter
	storeQueryDuration prometheus.Histogram
	momentsTotal       prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "crux",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.computesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computes_total",
		Help:      "Total number of successful moment computations",
	})

	m.computeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "compute_errors_total",
			Help:      "Total number of failed moment computations by error kind",
		},
		[]string{"kind"},
	)

	m.computeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_duration_milliseconds",
		Help:      "Histogram of full pipeline duration on cache miss in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.compositeScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "composite_score",
		Help:      "Distribution of computed composite scores on the 0-100 scale",
		Buckets:   []float64{10, 20, 30, 40, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100},
	})

	m.momentsByBand = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "moments_by_band_total",
			Help:      "Total computed moments by difficulty band",
		},
		[]string{"band"},
	)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total fresh cache hits on the compute path",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total cache misses triggering the full pipeline",
	})

	m.cacheStaleFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_stale_fallbacks_total",
		Help:      "Total stale cache entries served after an upstream failure",
	})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Total cache entries evicted past the stale retention window",
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Current number of entries held by the cache",
	})

	m.feedRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_requests_total",
		Help:      "Total requests issued to the upstream game-state feed",
	})

	m.feedDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_request_duration_milliseconds",
		Help:      "Upstream feed request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.feedTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_timeouts_total",
		Help:      "Total upstream feed requests that hit the request timeout",
	})

	m.feedRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_retries_total",
		Help:      "Total upstream feed requests retried after a transport error",
	})

	m.momentAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "moment_appends_total",
		Help:      "Total moments appended to the persistence store",
	})

	m.momentAppendErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "moment_append_errors_total",
		Help:      "Total failed moment appends (result still returned to caller)",
	})

	m.summaryMerges = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "summary_merges_total",
		Help:      "Total incremental event summary merges",
	})

	m.storeQueryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_milliseconds",
		Help:      "Persistence store read query duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.momentsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "moments_total",
		Help:      "Total number of moments held by the store",
	})

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

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordCompute increments the successful compute counter and observes the score.
func RecordCompute(composite float64, band string, durationMs float64) {
	globalManager.computesTotal.Inc()
	globalManager.compositeScores.Observe(composite)
	globalManager.momentsByBand.WithLabelValues(band).Inc()
	globalManager.computeDuration.Observe(durationMs)
}

// RecordComputeError increments the compute error counter for an error kind.
func RecordComputeError(kind string) {
	globalManager.computeErrors.WithLabelValues(kind).Inc()
}

// RecordCacheHit increments the fresh cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheStaleFallback increments the stale fallback counter.
func RecordCacheStaleFallback() {
	globalManager.cacheStaleFallbacks.Inc()
}

// RecordCacheEviction increments the eviction counter.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// UpdateCacheEntries sets the current cache entry gauge.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// RecordFeedRequest increments the feed request counter and observes duration.
func RecordFeedRequest(durationMs float64) {
	globalManager.feedRequests.Inc()
	globalManager.feedDuration.Observe(durationMs)
}

// RecordFeedTimeout increments the feed timeout counter.
func RecordFeedTimeout() {
	globalManager.feedTimeouts.Inc()
}

// RecordFeedRetry increments the feed retry counter.
func RecordFeedRetry() {
	globalManager.feedRetries.Inc()
}

// RecordMomentAppend increments the append and summary merge counters.
func RecordMomentAppend() {
	globalManager.momentAppends.Inc()
	globalManager.summaryMerges.Inc()
}

// RecordMomentAppendError increments the append error counter.
func RecordMomentAppendError() {
	globalManager.momentAppendErrors.Inc()
}

// RecordStoreQueryLatency observes a store read query duration.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryDuration.Observe(latencyMs)
}

// UpdateMomentsTotal sets the store size gauge.
func UpdateMomentsTotal(count int) {
	globalManager.momentsTotal.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage updates the allocated heap memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
