package middleware

import (
	"net/http"

	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
)

// RouteGuard enforces the route access rules on every request. It runs
// after AuthMiddleware so the auth context is already attached; requests
// with no context are evaluated as the default role.
type RouteGuard struct {
	evaluator *rbac.Evaluator
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewRouteGuard creates the route rule enforcement middleware
func NewRouteGuard(evaluator *rbac.Evaluator, logger *observability.Logger, metrics *observability.Metrics) *RouteGuard {
	return &RouteGuard{
		evaluator: evaluator,
		logger:    logger,
		metrics:   metrics,
	}
}

// Handler wraps an HTTP handler with route rule checks
func (g *RouteGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var roles []rbac.Role
		if authCtx := GetAuthContext(r); authCtx != nil {
			roles = authCtx.Identity.Roles
		}

		decision := g.evaluator.CanAccess(roles, r.URL.Path)
		if g.metrics != nil {
			g.metrics.RecordAccessDecision(r.URL.Path, decision.Allowed)
		}

		if !decision.Allowed {
			if g.logger != nil {
				g.logger.WithFields(map[string]interface{}{
					"path":     r.URL.Path,
					"roles":    roles,
					"reason":   decision.Reason,
					"redirect": decision.RedirectTo,
				}).Info("access denied")
			}
			if wantsJSON(r) {
				forbiddenResponse(w, decision.Reason)
				return
			}
			http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// wantsJSON reports whether the client is an API caller rather than a
// browser navigation.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "application/json" || r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
