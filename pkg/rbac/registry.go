package rbac

// Registry is the single source of truth for role metadata and ordering.
// It is built once from Config at startup and is immutable afterwards, so
// it is safe for concurrent use without locking.
type Registry struct {
	defs  []RoleDefinition
	byRole map[Role]RoleDefinition
}

// NewRegistry builds a registry from the configured role definitions
func NewRegistry(defs []RoleDefinition) *Registry {
	r := &Registry{
		defs:   make([]RoleDefinition, len(defs)),
		byRole: make(map[Role]RoleDefinition, len(defs)),
	}
	copy(r.defs, defs)
	for _, d := range defs {
		r.byRole[d.Role] = d
	}
	return r
}

// Definitions returns the configured role set in definition order
func (r *Registry) Definitions() []RoleDefinition {
	out := make([]RoleDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// DefinitionOf returns the definition for a role, or false if the role is
// not part of the configured set
func (r *Registry) DefinitionOf(role Role) (RoleDefinition, bool) {
	d, ok := r.byRole[role]
	return d, ok
}

// Known reports whether the role belongs to the closed role set
func (r *Registry) Known(role Role) bool {
	_, ok := r.byRole[role]
	return ok
}

// AccessLevel returns the highest level among the given roles. Empty or
// fully unrecognized role sets yield 0. Never fails.
func (r *Registry) AccessLevel(roles []Role) int {
	level := 0
	for _, role := range roles {
		if d, ok := r.byRole[role]; ok && d.Level > level {
			level = d.Level
		}
	}
	return level
}

// Hierarchy returns all roles at or below the given role's level,
// including the role itself. An unknown role yields only roles at level 0
// or below, which is the empty set for any sane configuration.
func (r *Registry) Hierarchy(role Role) []Role {
	roleLevel := 0
	if d, ok := r.byRole[role]; ok {
		roleLevel = d.Level
	}

	var out []Role
	for _, d := range r.defs {
		if d.Level <= roleLevel {
			out = append(out, d.Role)
		}
	}
	return out
}

// EffectiveRoles expands a role set through the hierarchy: holding a
// higher role grants every role beneath it. Order follows the configured
// definition order; duplicates are removed.
func (r *Registry) EffectiveRoles(roles []Role) []Role {
	granted := make(map[Role]bool)
	for _, role := range roles {
		for _, h := range r.Hierarchy(role) {
			granted[h] = true
		}
	}

	out := make([]Role, 0, len(granted))
	for _, d := range r.defs {
		if granted[d.Role] {
			out = append(out, d.Role)
		}
	}
	return out
}

// HighestRole returns the highest-level role the identity holds, or the
// given fallback when no held role is recognized
func (r *Registry) HighestRole(roles []Role, fallback Role) Role {
	best := fallback
	bestLevel := -1
	for _, role := range roles {
		if d, ok := r.byRole[role]; ok && d.Level > bestLevel {
			best = d.Role
			bestLevel = d.Level
		}
	}
	return best
}

// HasRole checks direct membership, with no hierarchy substitution
func HasRole(roles []Role, target Role) bool {
	for _, role := range roles {
		if role == target {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the held roles reach the level of at least
// one target role. Hierarchy applies: Admin passes a Moderator check.
func (r *Registry) HasAnyRole(held []Role, targets []Role) bool {
	level := r.AccessLevel(held)
	for _, t := range targets {
		if d, ok := r.byRole[t]; ok && level >= d.Level {
			return true
		}
	}
	return false
}

// CanActAs reports whether any held role's level is at or above the
// target role's level
func (r *Registry) CanActAs(held []Role, target Role) bool {
	d, ok := r.byRole[target]
	if !ok {
		return false
	}
	return r.AccessLevel(held) >= d.Level
}
