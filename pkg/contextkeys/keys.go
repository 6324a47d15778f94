// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/lumenhq/console/pkg/contextkeys"
//	ctx = context.WithValue(ctx, contextkeys.AuthKey, authCtx)
//	authCtx := ctx.Value(contextkeys.AuthKey).(*rbac.Context)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthKey contains *rbac.Context
	// Set by: middleware.AuthMiddleware after building the auth context
	// Required by: role-gated handlers, the route guard, /api endpoints
	// Type: *rbac.Context
	AuthKey Key = "auth_context"

	// SessionKey contains *session.Session
	// Set by: middleware.AuthMiddleware after session lookup
	// Used by: debug endpoint, logout handler
	// Type: *session.Session
	SessionKey Key = "session"

	// RequestIDKey contains request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: access logs
	// Type: string
	RequestIDKey Key = "request_id"

	// RequestStartTimeKey contains request start timestamp
	// Set by: middleware.RequestID
	// Used by: duration calculation in access logs
	// Type: time.Time
	RequestStartTimeKey Key = "request_start_time"
)

// Helper functions for type-safe context operations

// WithAuth adds the authorization context to the context
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, authCtx)
}

// WithSession adds the login session to the context
func WithSession(ctx context.Context, sess interface{}) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithRequestStartTime adds request start time to the context
func WithRequestStartTime(ctx context.Context, startTime interface{}) context.Context {
	return context.WithValue(ctx, RequestStartTimeKey, startTime)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
