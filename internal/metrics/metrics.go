package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Store metrics
	StoreQueries *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec
	StoreRows    *prometheus.HistogramVec
	CacheLookups *prometheus.CounterVec

	// Dashboard metrics
	FallbackLoads *prometheus.CounterVec
	RefreshRuns   *prometheus.CounterVec
	TrackedRanges prometheus.Gauge
	LastRefresh   prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them on a fresh registry,
// together with the Go and process collectors.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route"},
		),

		StoreQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_queries_total",
				Help:      "Store queries by backend, table and outcome",
			},
			[]string{"backend", "table", "status"},
		),
		StoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_query_duration_seconds",
				Help:      "Store query latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"backend", "table"},
		),
		StoreRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_rows",
				Help:      "Rows returned per store query",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"table"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Read-through cache lookups by table and result",
			},
			[]string{"table", "result"},
		),

		FallbackLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "creatives_fallback_total",
				Help:      "Dashboard loads served from ad_creatives because daily_summary was empty",
			},
			[]string{"product"},
		),
		RefreshRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_runs_total",
				Help:      "Snapshot refreshes by trigger and outcome",
			},
			[]string{"trigger", "status"},
		),
		TrackedRanges: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tracked_ranges",
				Help:      "Number of (product, range) snapshots kept warm",
			},
		),
		LastRefresh: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_refresh_timestamp_seconds",
				Help:      "Unix time of the last completed refresh cycle",
			},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
}

// Registry exposes the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordStoreQuery records one store query.
func (m *Metrics) RecordStoreQuery(backend, table string, rows int, err error, latency time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreQueries.WithLabelValues(backend, table, status).Inc()
	m.StoreLatency.WithLabelValues(backend, table).Observe(latency.Seconds())
	if err == nil {
		m.StoreRows.WithLabelValues(table).Observe(float64(rows))
	}
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(table string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(table, result).Inc()
}

// RecordFallback records a load served by the creatives fallback.
func (m *Metrics) RecordFallback(product string) {
	if m == nil {
		return
	}
	m.FallbackLoads.WithLabelValues(product).Inc()
}

// RecordRefresh records a snapshot refresh.
func (m *Metrics) RecordRefresh(trigger string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RefreshRuns.WithLabelValues(trigger, status).Inc()
}

// UpdateTracked updates the tracked ranges gauge and the refresh timestamp.
func (m *Metrics) UpdateTracked(n int, at time.Time) {
	if m == nil {
		return
	}
	m.TrackedRanges.Set(float64(n))
	m.LastRefresh.Set(float64(at.Unix()))
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(route string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(route).Inc()
}
