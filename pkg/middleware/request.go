package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lumenhq/console/pkg/contextkeys"
	"github.com/lumenhq/console/pkg/observability"
)

// RequestID assigns each request a unique ID, honoring an incoming
// X-Request-ID header from a trusted proxy.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := contextkeys.WithRequestID(r.Context(), requestID)
		ctx = contextkeys.WithRequestStartTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging emits one structured log line per request and records the
// request duration metric.
func Logging(logger *observability.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			if metrics != nil {
				metrics.RecordHTTPRequest(r.Method, r.URL.Path, recorder.status, duration)
			}
			if logger != nil {
				fields := map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      recorder.status,
					"duration_ms": duration.Milliseconds(),
					"remote_addr": getClientIP(r),
				}
				if requestID := contextkeys.GetRequestID(r.Context()); requestID != "" {
					fields["request_id"] = requestID
				}
				if authCtx := GetAuthContext(r); authCtx != nil {
					fields["user_id"] = authCtx.Identity.ID
				}
				line := observability.LoggerWithTraceContext(r.Context(), logger)
				line.WithFields(fields).Info("request completed")
			}
		})
	}
}

// Recovery converts handler panics into 500 responses
func Recovery(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if logger != nil {
						logger.WithFields(map[string]interface{}{
							"panic": rec,
							"path":  r.URL.Path,
						}).Error("handler panic recovered")
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
