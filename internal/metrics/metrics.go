// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts served requests by method, route pattern and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// PanicsRecovered counts handler panics answered with a 500.
	PanicsRecovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_panics_recovered_total",
			Help: "Handler panics caught by the recovery middleware.",
		},
		[]string{"route"},
	)

	// IndexSyncFailures counts search index writes that failed and were
	// swallowed. The relational row stays authoritative.
	IndexSyncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_sync_failures_total",
			Help: "Search index writes that failed after the database write succeeded.",
		},
		[]string{"index", "op"},
	)

	// FileCleanupFailures counts stored files that could not be removed.
	FileCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upload_cleanup_failures_total",
			Help: "Uploaded files that could not be removed when their row was deleted.",
		},
	)

	// PageCacheInvalidations counts admin and write-triggered cache clears.
	PageCacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_invalidations_total",
			Help: "Page cache invalidations by scope.",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		PanicsRecovered,
		IndexSyncFailures,
		FileCleanupFailures,
		PageCacheInvalidations,
	)
}
