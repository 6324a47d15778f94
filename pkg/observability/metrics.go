package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the Console service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// RBAC metrics
	AccessDecisionsTotal  *prometheus.CounterVec
	RoleExtractionsTotal  *prometheus.CounterVec
	ContextFallbacksTotal prometheus.Counter

	// Token claim cache metrics
	TokenCacheHitsTotal      prometheus.Counter
	TokenCacheMissesTotal    prometheus.Counter
	TokenCacheEvictionsTotal prometheus.Counter
	TokenCacheSweepRemovals  prometheus.Counter
	TokenCacheEntries        prometheus.Gauge

	// Session metrics
	SessionsActive    prometheus.Gauge
	LoginsTotal       *prometheus.CounterVec
	LogoutsTotal      prometheus.Counter
	SessionSweepTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AccessDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_rbac_access_decisions_total",
				Help: "Route access decisions by outcome",
			},
			[]string{"path", "decision"},
		),
		RoleExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_rbac_role_extractions_total",
				Help: "Role extractions by winning source (token, profile, default)",
			},
			[]string{"source"},
		),
		ContextFallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_rbac_context_fallbacks_total",
				Help: "Auth context constructions that degraded to the default-role context",
			},
		),

		TokenCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_token_cache_hits_total",
				Help: "Token claim cache hits",
			},
		),
		TokenCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_token_cache_misses_total",
				Help: "Token claim cache misses (absent or expired)",
			},
		),
		TokenCacheEvictionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_token_cache_evictions_total",
				Help: "Entries evicted by the cache size bound",
			},
		),
		TokenCacheSweepRemovals: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_token_cache_sweep_removals_total",
				Help: "Expired entries removed by the background sweep",
			},
		),
		TokenCacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_token_cache_entries",
				Help: "Current number of cached token claim entries",
			},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_sessions_active",
				Help: "Currently active login sessions",
			},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_logins_total",
				Help: "Completed login attempts by outcome",
			},
			[]string{"outcome"},
		),
		LogoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_logouts_total",
				Help: "Completed logouts",
			},
		),
		SessionSweepTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_session_sweep_removals_total",
				Help: "Expired sessions removed by the background sweep",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AccessDecisionsTotal,
		m.RoleExtractionsTotal,
		m.ContextFallbacksTotal,
		m.TokenCacheHitsTotal,
		m.TokenCacheMissesTotal,
		m.TokenCacheEvictionsTotal,
		m.TokenCacheSweepRemovals,
		m.TokenCacheEntries,
		m.SessionsActive,
		m.LoginsTotal,
		m.LogoutsTotal,
		m.SessionSweepTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAccessDecision records an allow or deny for a route check
func (m *Metrics) RecordAccessDecision(path string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.AccessDecisionsTotal.WithLabelValues(path, decision).Inc()
}
