// Package metrics provides Prometheus metrics for the drug info service.
// HTTP traffic:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain:
//   - backend_requests_total / backend_request_duration_seconds: inference backend calls
//   - formatted_blocks_total: display blocks produced, by kind
//   - result_cache_entries / result_cache_lookups_total: result cache usage
//   - stale_responses_discarded_total: responses for superseded searches
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend call outcomes
const (
	OutcomeSuccess        = "success"
	OutcomeBackendError   = "backend_error"
	OutcomeTransportError = "transport_error"
	OutcomeInvalidBody    = "invalid_body"
)

// Cache lookup outcomes
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Per-client rate limiter buckets currently held",
		},
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Inference backend calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	// Model inference is slow, buckets reach well past the HTTP ones
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Inference backend call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"endpoint"},
	)

	FormattedBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formatted_blocks_total",
			Help: "Display blocks produced by the formatter",
		},
		[]string{"kind"},
	)

	ResultCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "result_cache_entries",
			Help: "Results currently held in the cache",
		},
	)

	ResultCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	StaleResponsesDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_responses_discarded_total",
			Help: "Backend responses dropped because their search was superseded",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(FormattedBlocksTotal)
	prometheus.MustRegister(ResultCacheEntries)
	prometheus.MustRegister(ResultCacheLookupsTotal)
	prometheus.MustRegister(StaleResponsesDiscardedTotal)
}
