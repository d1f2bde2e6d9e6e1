package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records per-route request counts and latency.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Completed HTTP requests by status class.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{duration: duration, requests: requests}
}

// Observe records one completed request.
func (m *HTTPMetrics) Observe(method, route, status string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(method, normalizeLabel(route)).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(method, normalizeLabel(route), status).Inc()
}

// CacheMetrics counts rollup cache traffic.
type CacheMetrics struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	flushes prometheus.Counter
}

// NewCacheMetrics registers the rollup cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_cache_hits_total",
		Help: "Rollup cache hits by endpoint.",
	}, []string{"endpoint"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_cache_misses_total",
		Help: "Rollup cache misses by endpoint.",
	}, []string{"endpoint"})
	flushes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollup_cache_flushes_total",
		Help: "Explicit rollup cache flushes.",
	})
	reg.MustRegister(hits, misses, flushes)
	return &CacheMetrics{hits: hits, misses: misses, flushes: flushes}
}

// IncHit increments the hit counter for the named endpoint.
func (m *CacheMetrics) IncHit(endpoint string) {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncMiss increments the miss counter for the named endpoint.
func (m *CacheMetrics) IncMiss(endpoint string) {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncFlush increments the flush counter.
func (m *CacheMetrics) IncFlush() {
	if m == nil || m.flushes == nil {
		return
	}
	m.flushes.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
