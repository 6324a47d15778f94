// Package observability provides structured logging, Prometheus metrics,
// health probes, OpenTelemetry wiring, and graceful shutdown for the
// Console service.
//
// # Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", id).Info("login completed")
//
// # Metrics
//
// NewMetrics registers HTTP, RBAC decision, token-cache, and session
// metrics on a private registry; Handler() serves them:
//
//	metrics := observability.NewMetrics(nil)
//	mux.Handle("/metrics", metrics.Handler())
//
// # Health
//
// HealthChecker probes the directory database and the Redis session
// store; RegisterHealthRoutes exposes /healthz and /readyz on the health
// listener.
//
// # Shutdown
//
// ShutdownManager drains the HTTP server and runs registered shutdown
// functions (cron sweeps, session stores, OTel providers) under a single
// timeout.
package observability
