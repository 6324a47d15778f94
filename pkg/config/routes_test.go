package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/console/pkg/rbac"
)

const validRules = `
routes:
  - path: /admin
    required_role: Admin
    redirect_to: /dashboard
  - path: /dashboard
    allowed_roles: [User, Moderator, Admin]
    redirect_to: /
`

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRouteRules(t *testing.T) {
	path := writeRulesFile(t, validRules)

	rules, err := LoadRouteRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "/admin", rules[0].Path)
	assert.Equal(t, rbac.RoleAdmin, rules[0].RequiredRole)
	assert.Equal(t, "/dashboard", rules[0].RedirectTo)
	assert.Equal(t, []rbac.Role{rbac.RoleUser, rbac.RoleModerator, rbac.RoleAdmin}, rules[1].AllowedRoles)
}

func TestLoadRouteRules_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{"},
		{"rule without path", "routes:\n  - required_role: Admin\n"},
		{"rule without any role constraint", "routes:\n  - path: /admin\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRouteRules(writeRulesFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRouteRules_MissingFile(t *testing.T) {
	_, err := LoadRouteRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWatchRouteRules_ReloadsOnChange(t *testing.T) {
	path := writeRulesFile(t, validRules)

	loaded := make(chan []rbac.RouteRule, 4)
	w, err := WatchRouteRules(path, nil, func(rules []rbac.RouteRule) {
		loaded <- rules
	})
	require.NoError(t, err)
	defer w.Close()

	// Initial load fires before watching begins
	select {
	case rules := <-loaded:
		assert.Len(t, rules, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("initial rules never loaded")
	}

	require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - path: /admin
    required_role: Admin
`), 0644))

	select {
	case rules := <-loaded:
		assert.Len(t, rules, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("rules were not reloaded after file change")
	}
}

func TestWatchRouteRules_KeepsLastGoodTableOnBrokenEdit(t *testing.T) {
	path := writeRulesFile(t, validRules)

	loaded := make(chan []rbac.RouteRule, 4)
	w, err := WatchRouteRules(path, nil, func(rules []rbac.RouteRule) {
		loaded <- rules
	})
	require.NoError(t, err)
	defer w.Close()

	<-loaded // initial load

	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0644))

	// The broken edit must not invoke onLoad
	select {
	case rules := <-loaded:
		t.Fatalf("unexpected reload with %d rules", len(rules))
	case <-time.After(500 * time.Millisecond):
	}
}
