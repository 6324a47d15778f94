package rbac

// Role represents a hierarchical access tier
type Role string

const (
	RoleAdmin     Role = "Admin"     // Full system access
	RoleModerator Role = "Moderator" // Content moderation
	RoleUser      Role = "User"      // Standard user
	RoleGuest     Role = "Guest"     // Limited access
)

// RoleDefinition describes a role and its position in the hierarchy.
// Higher level = more access (Admin=100, Moderator=50, User=10, Guest=1).
type RoleDefinition struct {
	Role        Role   `json:"role" yaml:"role"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Level       int    `json:"level" yaml:"level"`
}

// RouteRule controls access to a single path. Path is either an exact match
// or a prefix wildcard ending in "/*". RequiredRole demands direct
// membership; AllowedRoles is hierarchy-inclusive (a higher role passes).
type RouteRule struct {
	Path         string `json:"path" yaml:"path"`
	RequiredRole Role   `json:"required_role,omitempty" yaml:"required_role,omitempty"`
	AllowedRoles []Role `json:"allowed_roles,omitempty" yaml:"allowed_roles,omitempty"`
	RedirectTo   string `json:"redirect_to,omitempty" yaml:"redirect_to,omitempty"`
}

// Identity is the per-request view of an authenticated user. Roles is
// always non-empty after extraction (the configured default role is the
// floor).
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

// Decision is the result of a route access check
type Decision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Config holds the full RBAC configuration: the closed role set, the route
// rule table, the fallback role, and each role's landing path.
type Config struct {
	Roles           []RoleDefinition `yaml:"roles"`
	Routes          []RouteRule      `yaml:"routes"`
	DefaultRole     Role             `yaml:"default_role"`
	DefaultRedirect map[Role]string  `yaml:"default_redirect"`

	// Extraction options
	ClaimsNamespace string   `yaml:"claims_namespace"`
	AdminEmails     []string `yaml:"admin_emails"`
}

// DefaultConfig returns the built-in role and route tables. These mirror
// the production dashboard: /admin is Admin-only, /dashboard is open to
// User and above, /moderator to Moderator and above.
func DefaultConfig() Config {
	return Config{
		Roles: []RoleDefinition{
			{Role: RoleAdmin, Name: "Administrator", Description: "Full system access", Level: 100},
			{Role: RoleModerator, Name: "Moderator", Description: "Content moderation", Level: 50},
			{Role: RoleUser, Name: "User", Description: "Standard user", Level: 10},
			{Role: RoleGuest, Name: "Guest", Description: "Limited access", Level: 1},
		},
		Routes: []RouteRule{
			{Path: "/admin", RequiredRole: RoleAdmin, RedirectTo: "/dashboard"},
			{Path: "/admin/*", RequiredRole: RoleAdmin, RedirectTo: "/dashboard"},
			{Path: "/dashboard", AllowedRoles: []Role{RoleUser, RoleModerator, RoleAdmin}, RedirectTo: "/"},
			{Path: "/dashboard/*", AllowedRoles: []Role{RoleUser, RoleModerator, RoleAdmin}, RedirectTo: "/"},
			{Path: "/moderator", AllowedRoles: []Role{RoleModerator, RoleAdmin}, RedirectTo: "/dashboard"},
		},
		DefaultRole: RoleUser,
		DefaultRedirect: map[Role]string{
			RoleAdmin:     "/admin",
			RoleModerator: "/dashboard",
			RoleUser:      "/dashboard",
			RoleGuest:     "/",
		},
		ClaimsNamespace: "https://console.lumenhq.io/roles",
	}
}
