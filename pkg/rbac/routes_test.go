package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEvaluator() *Evaluator {
	cfg := DefaultConfig()
	return NewEvaluator(cfg, NewRegistry(cfg.Roles))
}

func TestEvaluator_CanAccess(t *testing.T) {
	ev := newTestEvaluator()

	tests := []struct {
		name         string
		roles        []Role
		path         string
		wantAllowed  bool
		wantRedirect string
	}{
		{"admin on admin page", []Role{RoleAdmin}, "/admin", true, ""},
		{"moderator denied admin page despite level", []Role{RoleModerator}, "/admin", false, "/dashboard"},
		{"user denied admin subpage", []Role{RoleUser}, "/admin/users", false, "/dashboard"},
		{"user on dashboard", []Role{RoleUser}, "/dashboard", true, ""},
		{"admin passes dashboard via hierarchy", []Role{RoleAdmin}, "/dashboard", true, ""},
		{"guest denied dashboard", []Role{RoleGuest}, "/dashboard", false, "/"},
		{"moderator on moderator page", []Role{RoleModerator}, "/moderator", true, ""},
		{"user denied moderator page", []Role{RoleUser}, "/moderator", false, "/dashboard"},
		{"unruled path is open", []Role{RoleGuest}, "/about", true, ""},
		{"unruled path open to no roles", nil, "/", true, ""},
		{"empty roles denied dashboard", nil, "/dashboard", false, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ev.CanAccess(tt.roles, tt.path)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantRedirect, d.RedirectTo)
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestEvaluator_ExactBeforeWildcard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routes = []RouteRule{
		{Path: "/admin/*", RequiredRole: RoleAdmin, RedirectTo: "/dashboard"},
		{Path: "/admin/help", AllowedRoles: []Role{RoleUser, RoleModerator, RoleAdmin}, RedirectTo: "/"},
	}
	ev := NewEvaluator(cfg, NewRegistry(cfg.Roles))

	// The exact rule governs even though the wildcard is registered first
	d := ev.CanAccess([]Role{RoleUser}, "/admin/help")
	assert.True(t, d.Allowed)

	d = ev.CanAccess([]Role{RoleUser}, "/admin/settings")
	assert.False(t, d.Allowed)
}

func TestEvaluator_DefaultRedirect(t *testing.T) {
	ev := newTestEvaluator()

	tests := []struct {
		name  string
		roles []Role
		want  string
	}{
		{"admin lands on admin", []Role{RoleAdmin}, "/admin"},
		{"moderator lands on dashboard", []Role{RoleModerator}, "/dashboard"},
		{"user lands on dashboard", []Role{RoleUser}, "/dashboard"},
		{"guest lands on root", []Role{RoleGuest}, "/"},
		{"highest role wins", []Role{RoleUser, RoleAdmin}, "/admin"},
		{"no roles falls back to default role's page", nil, "/dashboard"},
		{"unknown roles fall back too", []Role{"superuser"}, "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.DefaultRedirect(tt.roles))
		})
	}
}

func TestEvaluator_SetRules(t *testing.T) {
	ev := newTestEvaluator()

	// Swap in a table that opens /admin to moderators
	ev.SetRules([]RouteRule{
		{Path: "/admin", AllowedRoles: []Role{RoleModerator, RoleAdmin}, RedirectTo: "/dashboard"},
	})

	assert.True(t, ev.CanAccess([]Role{RoleModerator}, "/admin").Allowed)
	// Old dashboard rule is gone, so the path is now open
	assert.True(t, ev.CanAccess([]Role{RoleGuest}, "/dashboard").Allowed)
}

func TestEvaluator_Rules_Snapshot(t *testing.T) {
	ev := newTestEvaluator()

	rules := ev.Rules()
	rules[0].RequiredRole = RoleGuest

	// Mutating the snapshot must not change evaluation
	d := ev.CanAccess([]Role{RoleGuest}, "/admin")
	assert.False(t, d.Allowed)
}

func TestEvaluator_DenyRedirectFallsBackToRoleLanding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routes = []RouteRule{
		{Path: "/secret", RequiredRole: RoleAdmin},
	}
	ev := NewEvaluator(cfg, NewRegistry(cfg.Roles))

	d := ev.CanAccess([]Role{RoleUser}, "/secret")
	assert.False(t, d.Allowed)
	assert.Equal(t, "/dashboard", d.RedirectTo)
}
