package rbac

import (
	"fmt"
	"strings"

	"github.com/lumenhq/console/pkg/observability"
)

// Extractor resolves the roles held by an identity from a profile object,
// trying several claim sources in priority order. Extraction is total: it
// always returns at least the configured default role.
type Extractor struct {
	cfg     Config
	reg     *Registry
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewExtractor creates an extractor bound to the given configuration
func NewExtractor(cfg Config, reg *Registry, logger *observability.Logger) *Extractor {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Extractor{cfg: cfg, reg: reg, logger: logger}
}

// SetMetrics enables per-source extraction counters
func (e *Extractor) SetMetrics(m *observability.Metrics) {
	e.metrics = m
}

func (e *Extractor) recordSource(source string) {
	if e.metrics != nil {
		e.metrics.RoleExtractionsTotal.WithLabelValues(source).Inc()
	}
}

// strategy is a single role source. Strategies are pure functions over the
// profile map; any panic inside one is recovered and treated as "found
// nothing".
type strategy struct {
	name string
	fn   func(profile map[string]interface{}) []Role
}

// FromProfile extracts roles from a user profile map. Sources are tried in
// priority order: the custom claims namespace, a generic "roles" field, the
// nested app_metadata.roles field, then the admin email allow-list. The
// first source yielding at least one valid role wins. Never returns an
// error; on total failure the default role is returned.
func (e *Extractor) FromProfile(profile map[string]interface{}) []Role {
	if profile == nil {
		e.logger.Warn("role extraction called with nil profile, using default role")
		e.recordSource("default")
		return []Role{e.cfg.DefaultRole}
	}

	strategies := []strategy{
		{"custom_claims", func(p map[string]interface{}) []Role {
			return e.filterRoles(p[e.cfg.ClaimsNamespace])
		}},
		{"roles_field", func(p map[string]interface{}) []Role {
			return e.filterRoles(p["roles"])
		}},
		{"app_metadata", func(p map[string]interface{}) []Role {
			meta, _ := p["app_metadata"].(map[string]interface{})
			if meta == nil {
				return nil
			}
			return e.filterRoles(meta["roles"])
		}},
		{"admin_email", func(p map[string]interface{}) []Role {
			email, _ := p["email"].(string)
			if e.isAdminEmail(email) {
				return []Role{RoleAdmin}
			}
			return nil
		}},
	}

	for _, s := range strategies {
		roles := e.runStrategy(s, profile)
		if len(roles) > 0 {
			e.logger.WithFields(map[string]interface{}{
				"source": s.name,
				"roles":  rolesToStrings(roles),
			}).Debug("roles extracted from profile")
			e.recordSource(s.name)
			return roles
		}
	}

	e.logger.WithField("default_role", string(e.cfg.DefaultRole)).Debug("no roles found in any source, using default")
	e.recordSource("default")
	return []Role{e.cfg.DefaultRole}
}

// runStrategy executes one source with panic isolation so a malformed
// profile shape can never take down the request
func (e *Extractor) runStrategy(s strategy, profile map[string]interface{}) (roles []Role) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("strategy", s.name).WithError(fmt.Errorf("%v", r)).Error("role extraction strategy failed")
			roles = nil
		}
	}()
	return s.fn(profile)
}

// FilterRoles validates arbitrary claim data against the closed role set.
// Accepts a single value or a slice; anything outside the configured roles
// is dropped.
func (e *Extractor) FilterRoles(data interface{}) []Role {
	return e.filterRoles(data)
}

func (e *Extractor) filterRoles(data interface{}) []Role {
	if data == nil {
		return nil
	}

	var candidates []interface{}
	switch v := data.(type) {
	case []interface{}:
		candidates = v
	case []string:
		for _, s := range v {
			candidates = append(candidates, s)
		}
	case []Role:
		for _, r := range v {
			candidates = append(candidates, string(r))
		}
	default:
		candidates = []interface{}{v}
	}

	var roles []Role
	for _, c := range candidates {
		s, ok := c.(string)
		if !ok {
			continue
		}
		role := Role(s)
		if e.reg.Known(role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// isAdminEmail checks the allow-list with a case-insensitive exact match.
// No patterns: an entry grants admin to exactly one address.
func (e *Extractor) isAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, admin := range e.cfg.AdminEmails {
		if strings.EqualFold(email, admin) {
			return true
		}
	}
	return false
}

// DefaultRole returns the configured fallback role
func (e *Extractor) DefaultRole() Role {
	return e.cfg.DefaultRole
}

func rolesToStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
