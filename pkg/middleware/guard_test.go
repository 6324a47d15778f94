package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenhq/console/pkg/rbac"
)

func newTestGuard() *RouteGuard {
	cfg := rbac.DefaultConfig()
	return NewRouteGuard(rbac.NewEvaluator(cfg, rbac.NewRegistry(cfg.Roles)), nil, nil)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRouteGuard_Allowed(t *testing.T) {
	handler := newTestGuard().Handler(okHandler())

	req := withAuthContext(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rbac.RoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteGuard_DeniedBrowserRedirects(t *testing.T) {
	handler := newTestGuard().Handler(okHandler())

	req := withAuthContext(httptest.NewRequest(http.MethodGet, "/admin", nil), rbac.RoleUser)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouteGuard_DeniedAPICallGets403(t *testing.T) {
	handler := newTestGuard().Handler(okHandler())

	req := withAuthContext(httptest.NewRequest(http.MethodGet, "/admin", nil), rbac.RoleUser)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "requires Admin role")
}

func TestRouteGuard_UnauthenticatedTreatedAsNoRoles(t *testing.T) {
	handler := newTestGuard().Handler(okHandler())

	t.Run("guarded path redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("open path passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouteGuard_WildcardCoversSubpaths(t *testing.T) {
	handler := newTestGuard().Handler(okHandler())

	req := withAuthContext(httptest.NewRequest(http.MethodGet, "/admin/users/42", nil), rbac.RoleModerator)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
