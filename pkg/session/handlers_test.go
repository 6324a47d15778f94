package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/console/pkg/config"
	"github.com/lumenhq/console/pkg/rbac"
)

func newTestHandlers(t *testing.T, store Store) *Handlers {
	t.Helper()
	cfg := rbac.DefaultConfig()
	reg := rbac.NewRegistry(cfg.Roles)
	builder := rbac.NewContextBuilder(reg, rbac.NewExtractor(cfg, reg, nil), nil, nil)
	evaluator := rbac.NewEvaluator(cfg, reg)

	return NewHandlers(nil, store, builder, evaluator, config.SessionConfig{
		CookieName: "console_session",
		TTL:        time.Hour,
	}, nil, nil)
}

func TestCallback_RejectsMissingStateCookie(t *testing.T) {
	h := newTestHandlers(t, NewMemoryStore(0, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=xyz", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallback_RejectsStateMismatch(t *testing.T) {
	h := newTestHandlers(t, NewMemoryStore(0, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "expected"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_DeletesSessionAndClearsCookie(t *testing.T) {
	store := NewMemoryStore(0, nil, nil)
	defer store.Close()
	h := newTestHandlers(t, store)

	sess := testSession("s1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(context.Background(), sess))

	// Local logout only, since no provider is configured
	h.provider = &Provider{issuerURL: "https://idp.example.com"}

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "console_session", Value: "s1"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	_, err := store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "console_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie was not cleared")
}

func TestLogout_Auth0IssuerRedirectsToProviderLogout(t *testing.T) {
	store := NewMemoryStore(0, nil, nil)
	defer store.Close()
	h := newTestHandlers(t, store)
	h.provider = &Provider{issuerURL: "https://tenant.auth0.com/", clientID: "client-1"}

	req := httptest.NewRequest(http.MethodGet, "/auth/logout?return_to=https://console.example.com", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "https://tenant.auth0.com/v2/logout")
	assert.Contains(t, loc, "client_id=client-1")
}

func TestIsSafeReturnTo(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"/dashboard", true},
		{"/admin/users", true},
		{"", false},
		{"https://evil.example.com", false},
		{"//evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, isSafeReturnTo(tt.target))
		})
	}
}

func TestRandomState_Unique(t *testing.T) {
	a, err := randomState()
	require.NoError(t, err)
	b, err := randomState()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
