package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Feed pipeline metrics
	FeedCacheHitsTotal        prometheus.CounterVec
	FeedCacheMissesTotal      prometheus.CounterVec
	FeedGenerationTime        prometheus.HistogramVec
	FeedAggregationFailures   prometheus.CounterVec
	FeedDiscoveryInjections   prometheus.CounterVec
	FeedVisiblePostsPerScope  prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			FeedCacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_cache_hits_total",
					Help: "Feed requests served from the processed-list cache",
				},
				[]string{"scope"},
			),
			FeedCacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_cache_misses_total",
					Help: "Feed requests that recomputed the pipeline",
				},
				[]string{"scope", "reason"},
			),
			FeedGenerationTime: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_generation_seconds",
					Help:    "Time spent running the full ranking pipeline",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
				},
				[]string{"scope"},
			),
			FeedAggregationFailures: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_aggregation_failures_total",
					Help: "Engagement sub-lookups that errored and were treated as zero",
				},
				[]string{"scope"},
			),
			FeedDiscoveryInjections: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_discovery_injections_total",
					Help: "Discovery posts injected into global feeds",
				},
				[]string{},
			),
			FeedVisiblePostsPerScope: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_visible_posts",
					Help:    "Visible post count per feed request",
					Buckets: prometheus.ExponentialBuckets(1, 4, 8),
				},
				[]string{"scope"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"client"},
			),
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Application errors by type",
				},
				[]string{"type"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	return Initialize()
}
