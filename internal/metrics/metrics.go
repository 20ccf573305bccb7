// Package metrics provides the Prometheus instrumentation for the
// submission exporter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every metric exposed on /metrics.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Export metrics
	ExportsTotal   *prometheus.CounterVec
	ExportRows     prometheus.Histogram
	ExportDuration *prometheus.HistogramVec

	// Export cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Delete metrics
	SubmissionsDeletedTotal prometheus.Counter

	ServerStartTime time.Time
}

// New creates and registers the metric set on reg. Each caller owning its
// registry keeps parallel instances from colliding on metric names.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{ServerStartTime: time.Now()}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_exporter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submission_exporter_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "submission_exporter_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	m.ExportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_exporter_exports_total",
			Help: "Total number of export documents requested",
		},
		[]string{"format", "status"},
	)

	m.ExportRows = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submission_exporter_export_rows",
			Help:    "Number of submission rows per built export document",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		},
	)

	m.ExportDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submission_exporter_export_duration_seconds",
			Help:    "Time spent resolving and serializing export documents",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	m.CacheHitsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_exporter_export_cache_hits_total",
			Help: "Export documents served from cache",
		},
	)

	m.CacheMissesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_exporter_export_cache_misses_total",
			Help: "Export documents built because the cache had no entry",
		},
	)

	m.SubmissionsDeletedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_exporter_submissions_deleted_total",
			Help: "Submissions removed by bulk delete requests",
		},
	)

	return m
}
