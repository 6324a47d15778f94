// Package middleware provides the HTTP middleware chain for the console.
//
// # Overview
//
// Requests pass through, in order: request ID assignment, panic
// recovery, logging, rate limiting, session resolution and the route
// guard. Session resolution attaches the RBAC auth context; the route
// guard evaluates the route access rules and redirects denied browser
// requests or returns 403 to API callers.
//
// # Key Components
//
//   - AuthMiddleware: cookie to session to auth context resolution
//   - RouteGuard: route rule enforcement with redirect-on-deny
//   - RequireRole / RequireAnyRole: per-handler role checks
//   - RequestID, Logging, Recovery: request plumbing
//   - RateLimitMiddleware: token bucket limits keyed by user or IP
package middleware
