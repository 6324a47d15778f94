package rbac

import (
	"fmt"

	"github.com/lumenhq/console/pkg/observability"
)

// Context is the read-only authorization view handed to route handlers.
// It bundles the resolved identity with role predicates; all methods are
// pure functions over the captured role set.
type Context struct {
	Identity Identity

	reg         *Registry
	defaultRole Role
}

// HasRole checks direct role membership
func (c *Context) HasRole(role Role) bool {
	return HasRole(c.Identity.Roles, role)
}

// HasAnyRole checks hierarchy-inclusive membership against any target
func (c *Context) HasAnyRole(targets ...Role) bool {
	return c.reg.HasAnyRole(c.Identity.Roles, targets)
}

// AccessLevel returns the identity's maximum hierarchy level
func (c *Context) AccessLevel() int {
	return c.reg.AccessLevel(c.Identity.Roles)
}

// CanActAs reports whether the identity reaches the target role's level
func (c *Context) CanActAs(target Role) bool {
	return c.reg.CanActAs(c.Identity.Roles, target)
}

// EffectiveRoles returns all roles granted through the hierarchy
func (c *Context) EffectiveRoles() []Role {
	return c.reg.EffectiveRoles(c.Identity.Roles)
}

// IsAdmin is a convenience predicate for the most common check
func (c *Context) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// TokenRoleSource supplies roles decoded from session token material.
// Implemented by the claims cache; ok=false means the token yielded
// nothing and profile extraction should run.
type TokenRoleSource interface {
	RolesFromToken(token string) ([]Role, bool)
}

// ContextBuilder assembles authorization contexts. Token-derived roles
// take priority over profile claims; profile strategies run only when the
// token yields nothing.
type ContextBuilder struct {
	reg       *Registry
	extractor *Extractor
	tokens    TokenRoleSource
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewContextBuilder wires the registry, extractor, and token source
// together. tokens may be nil when no token material is ever available.
func NewContextBuilder(reg *Registry, extractor *Extractor, tokens TokenRoleSource, logger *observability.Logger) *ContextBuilder {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &ContextBuilder{reg: reg, extractor: extractor, tokens: tokens, logger: logger}
}

// SetMetrics enables extraction and fallback counters
func (b *ContextBuilder) SetMetrics(m *observability.Metrics) {
	b.metrics = m
	b.extractor.SetMetrics(m)
}

// Build produces a Context for the given profile and optional raw ID
// token. Construction never fails: any internal problem degrades to a
// minimal default-role context so route evaluation can still proceed.
func (b *ContextBuilder) Build(profile map[string]interface{}, rawIDToken string) *Context {
	ctx, err := b.build(profile, rawIDToken)
	if err != nil {
		b.logger.WithError(err).Error("auth context construction failed, substituting default-role context")
		if b.metrics != nil {
			b.metrics.ContextFallbacksTotal.Inc()
		}
		return b.fallback(profile)
	}
	return ctx
}

func (b *ContextBuilder) build(profile map[string]interface{}, rawIDToken string) (ctx *Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("panic building auth context: %v", r)
		}
	}()

	if profile == nil {
		return nil, fmt.Errorf("nil profile")
	}

	var roles []Role
	if b.tokens != nil && rawIDToken != "" {
		if tokenRoles, ok := b.tokens.RolesFromToken(rawIDToken); ok && len(tokenRoles) > 0 {
			roles = tokenRoles
			if b.metrics != nil {
				b.metrics.RoleExtractionsTotal.WithLabelValues("token").Inc()
			}
		}
	}
	if len(roles) == 0 {
		roles = b.extractor.FromProfile(profile)
	}

	return &Context{
		Identity: Identity{
			ID:    profileString(profile, "sub", "id"),
			Email: profileString(profile, "email"),
			Name:  profileString(profile, "name"),
			Roles: roles,
		},
		reg:         b.reg,
		defaultRole: b.extractor.DefaultRole(),
	}, nil
}

// fallback returns the minimal context used when construction fails. The
// identity keeps whatever profile fields survive and holds only the
// default role.
func (b *ContextBuilder) fallback(profile map[string]interface{}) *Context {
	id := profileString(profile, "sub", "id")
	if id == "" {
		id = "unknown"
	}
	email := profileString(profile, "email")
	if email == "" {
		email = "unknown"
	}
	name := profileString(profile, "name")
	if name == "" {
		name = "unknown"
	}

	return &Context{
		Identity: Identity{
			ID:    id,
			Email: email,
			Name:  name,
			Roles: []Role{b.extractor.DefaultRole()},
		},
		reg:         b.reg,
		defaultRole: b.extractor.DefaultRole(),
	}
}

// profileString reads the first present string value among keys
func profileString(profile map[string]interface{}, keys ...string) string {
	if profile == nil {
		return ""
	}
	for _, k := range keys {
		if s, ok := profile[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
