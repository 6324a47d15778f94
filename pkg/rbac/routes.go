package rbac

import (
	"fmt"
	"strings"
	"sync"
)

// Evaluator decides route accessibility and computes role-appropriate
// default destinations. Evaluation is pure and total: there is no failure
// path, and unmatched paths are always allowed.
//
// The rule table can be swapped at runtime (config hot reload), so access
// goes through a read lock; everything else in the package is immutable.
type Evaluator struct {
	reg             *Registry
	defaultRole     Role
	defaultRedirect map[Role]string

	mu    sync.RWMutex
	rules []RouteRule
}

// NewEvaluator creates an evaluator over the configured route rules
func NewEvaluator(cfg Config, reg *Registry) *Evaluator {
	ev := &Evaluator{
		reg:             reg,
		defaultRole:     cfg.DefaultRole,
		defaultRedirect: make(map[Role]string, len(cfg.DefaultRedirect)),
	}
	for role, path := range cfg.DefaultRedirect {
		ev.defaultRedirect[role] = path
	}
	ev.SetRules(cfg.Routes)
	return ev
}

// SetRules replaces the route rule table. Used by the config watcher when
// the rules file changes on disk.
func (ev *Evaluator) SetRules(rules []RouteRule) {
	copied := make([]RouteRule, len(rules))
	copy(copied, rules)
	ev.mu.Lock()
	ev.rules = copied
	ev.mu.Unlock()
}

// Rules returns a snapshot of the current rule table
func (ev *Evaluator) Rules() []RouteRule {
	ev.mu.RLock()
	defer ev.mu.RUnlock()
	out := make([]RouteRule, len(ev.rules))
	copy(out, ev.rules)
	return out
}

// DefaultRedirect returns the landing path for the highest role the
// identity holds, falling back to the default role's path
func (ev *Evaluator) DefaultRedirect(roles []Role) string {
	highest := ev.reg.HighestRole(roles, ev.defaultRole)
	if path, ok := ev.defaultRedirect[highest]; ok {
		return path
	}
	if path, ok := ev.defaultRedirect[ev.defaultRole]; ok {
		return path
	}
	return "/"
}

// CanAccess checks the first matching rule for path. Exact matches are
// tried before wildcard prefixes, in registration order. RequiredRole
// demands direct membership of exactly that role; AllowedRoles passes when
// the identity's access level reaches any allowed role's level.
func (ev *Evaluator) CanAccess(roles []Role, path string) Decision {
	rule, ok := ev.match(path)
	if !ok {
		return Decision{Allowed: true}
	}

	if rule.RequiredRole != "" && !HasRole(roles, rule.RequiredRole) {
		return Decision{
			Allowed:    false,
			RedirectTo: ev.denyRedirect(rule, roles),
			Reason:     fmt.Sprintf("requires %s role", rule.RequiredRole),
		}
	}

	if len(rule.AllowedRoles) > 0 && !ev.reg.HasAnyRole(roles, rule.AllowedRoles) {
		return Decision{
			Allowed:    false,
			RedirectTo: ev.denyRedirect(rule, roles),
			Reason:     fmt.Sprintf("requires one of: %s", joinRoles(rule.AllowedRoles)),
		}
	}

	return Decision{Allowed: true}
}

// match finds the governing rule for a path. At most one rule applies:
// the first exact match wins, then the first wildcard whose prefix
// contains the path.
func (ev *Evaluator) match(path string) (RouteRule, bool) {
	ev.mu.RLock()
	defer ev.mu.RUnlock()

	for _, rule := range ev.rules {
		if !strings.HasSuffix(rule.Path, "/*") && rule.Path == path {
			return rule, true
		}
	}
	for _, rule := range ev.rules {
		if strings.HasSuffix(rule.Path, "/*") && strings.HasPrefix(path, strings.TrimSuffix(rule.Path, "/*")) {
			return rule, true
		}
	}
	return RouteRule{}, false
}

func (ev *Evaluator) denyRedirect(rule RouteRule, roles []Role) string {
	if rule.RedirectTo != "" {
		return rule.RedirectTo
	}
	return ev.DefaultRedirect(roles)
}

func joinRoles(roles []Role) string {
	return strings.Join(rolesToStrings(roles), ", ")
}
