package middleware

import (
	"net/http"
	"net/url"

	"github.com/lumenhq/console/pkg/contextkeys"
	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
	"github.com/lumenhq/console/pkg/session"
)

// AuthMiddleware resolves the login session on each request and attaches
// the RBAC auth context. When optional is false, requests without a
// valid session are redirected to the login endpoint.
type AuthMiddleware struct {
	store      session.Store
	builder    *rbac.ContextBuilder
	cookieName string
	optional   bool
	logger     *observability.Logger
}

// NewAuthMiddleware creates the session-resolving middleware
func NewAuthMiddleware(store session.Store, builder *rbac.ContextBuilder, cookieName string, optional bool, logger *observability.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		store:      store,
		builder:    builder,
		cookieName: cookieName,
		optional:   optional,
		logger:     logger,
	}
}

// Handler wraps an HTTP handler with session resolution
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil {
			m.unauthenticated(w, r, next)
			return
		}

		sess, err := m.store.Get(r.Context(), cookie.Value)
		if err != nil {
			if err != session.ErrNotFound && m.logger != nil {
				m.logger.WithError(err).Error("session lookup failed")
			}
			m.unauthenticated(w, r, next)
			return
		}

		authCtx := m.builder.Build(sess.Profile, sess.RawIDToken)
		ctx := contextkeys.WithSession(r.Context(), sess)
		ctx = contextkeys.WithAuth(ctx, authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) unauthenticated(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if m.optional {
		next.ServeHTTP(w, r)
		return
	}
	loginURL := "/auth/login?return_to=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// GetAuthContext extracts the RBAC auth context from a request, or nil
// when the request is unauthenticated.
func GetAuthContext(r *http.Request) *rbac.Context {
	ctx := r.Context().Value(contextkeys.AuthKey)
	if ctx == nil {
		return nil
	}
	authCtx, ok := ctx.(*rbac.Context)
	if !ok {
		return nil
	}
	return authCtx
}

// GetSession extracts the login session from a request, or nil
func GetSession(r *http.Request) *session.Session {
	ctx := r.Context().Value(contextkeys.SessionKey)
	if ctx == nil {
		return nil
	}
	sess, ok := ctx.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// RequireRole creates middleware that requires direct membership in role
func RequireRole(role rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil {
				forbiddenResponse(w, "authentication required")
				return
			}
			if !authCtx.HasRole(role) {
				forbiddenResponse(w, "insufficient role permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole creates middleware that passes when the caller's access
// level reaches any of the given roles.
func RequireAnyRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil {
				forbiddenResponse(w, "authentication required")
				return
			}
			if !authCtx.HasAnyRole(roles...) {
				forbiddenResponse(w, "insufficient role permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbiddenResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
