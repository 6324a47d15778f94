package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/console/pkg/contextkeys"
	"github.com/lumenhq/console/pkg/rbac"
	"github.com/lumenhq/console/pkg/session"
)

const testCookie = "console_session"

func newTestBuilder() *rbac.ContextBuilder {
	cfg := rbac.DefaultConfig()
	reg := rbac.NewRegistry(cfg.Roles)
	return rbac.NewContextBuilder(reg, rbac.NewExtractor(cfg, reg, nil), nil, nil)
}

func newTestSession(t *testing.T, store session.Store, roles []interface{}) *session.Session {
	t.Helper()
	sess := &session.Session{
		ID: "sess-1",
		Profile: map[string]interface{}{
			"sub":   "auth0|1",
			"email": "person@example.com",
			"name":  "Test Person",
			"roles": roles,
		},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Create(context.Background(), sess))
	return sess
}

func echoAuthHandler(t *testing.T, gotCtx **rbac.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotCtx = GetAuthContext(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidSession(t *testing.T) {
	store := session.NewMemoryStore(0, nil, nil)
	defer store.Close()
	sess := newTestSession(t, store, []interface{}{"Admin"})

	var gotCtx *rbac.Context
	mw := NewAuthMiddleware(store, newTestBuilder(), testCookie, false, nil)
	handler := mw.Handler(echoAuthHandler(t, &gotCtx))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: sess.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotCtx)
	assert.Equal(t, "auth0|1", gotCtx.Identity.ID)
	assert.Equal(t, []rbac.Role{rbac.RoleAdmin}, gotCtx.Identity.Roles)
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	store := session.NewMemoryStore(0, nil, nil)
	defer store.Close()

	t.Run("required redirects to login", func(t *testing.T) {
		mw := NewAuthMiddleware(store, newTestBuilder(), testCookie, false, nil)
		handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=2", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/auth/login?return_to=")
	})

	t.Run("optional passes through unauthenticated", func(t *testing.T) {
		var gotCtx *rbac.Context
		mw := NewAuthMiddleware(store, newTestBuilder(), testCookie, true, nil)
		handler := mw.Handler(echoAuthHandler(t, &gotCtx))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, gotCtx)
	})
}

func TestAuthMiddleware_ExpiredSession(t *testing.T) {
	store := session.NewMemoryStore(0, nil, nil)
	defer store.Close()

	sess := &session.Session{
		ID:        "expired",
		Profile:   map[string]interface{}{"sub": "auth0|2"},
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Create(context.Background(), sess))

	mw := NewAuthMiddleware(store, newTestBuilder(), testCookie, false, nil)
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: sess.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func withAuthContext(r *http.Request, roles ...rbac.Role) *http.Request {
	cfg := rbac.DefaultConfig()
	reg := rbac.NewRegistry(cfg.Roles)
	builder := rbac.NewContextBuilder(reg, rbac.NewExtractor(cfg, reg, nil), nil, nil)

	roleStrings := make([]interface{}, len(roles))
	for i, role := range roles {
		roleStrings[i] = string(role)
	}
	authCtx := builder.Build(map[string]interface{}{"sub": "auth0|1", "roles": roleStrings}, "")
	return r.WithContext(contextkeys.WithAuth(r.Context(), authCtx))
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(rbac.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("admin passes", func(t *testing.T) {
		req := withAuthContext(httptest.NewRequest(http.MethodGet, "/api/admin", nil), rbac.RoleAdmin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("moderator denied despite hierarchy", func(t *testing.T) {
		req := withAuthContext(httptest.NewRequest(http.MethodGet, "/api/admin", nil), rbac.RoleModerator)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated denied", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireAnyRole(t *testing.T) {
	handler := RequireAnyRole(rbac.RoleModerator, rbac.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("admin passes via hierarchy", func(t *testing.T) {
		req := withAuthContext(httptest.NewRequest(http.MethodGet, "/api/moderator", nil), rbac.RoleAdmin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user denied", func(t *testing.T) {
		req := withAuthContext(httptest.NewRequest(http.MethodGet, "/api/moderator", nil), rbac.RoleUser)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
