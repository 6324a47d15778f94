package api

import (
	"time"

	"github.com/lumenhq/console/pkg/directory"
	"github.com/lumenhq/console/pkg/rbac"
)

// MeResponse describes the caller's resolved identity and access
type MeResponse struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Roles          []rbac.Role `json:"roles"`
	EffectiveRoles []rbac.Role `json:"effective_roles"`
	AccessLevel    int         `json:"access_level"`
	IsAdmin        bool        `json:"is_admin"`
	LandingPage    string      `json:"landing_page"`
}

// DashboardResponse is the user dashboard payload
type DashboardResponse struct {
	Greeting    string      `json:"greeting"`
	Initials    string      `json:"initials"`
	Roles       []rbac.Role `json:"roles"`
	CanModerate bool        `json:"can_moderate"`
	CanAdmin    bool        `json:"can_admin"`
}

// AdminOverviewResponse is the admin landing page payload
type AdminOverviewResponse struct {
	TotalUsers      int                   `json:"total_users"`
	ActiveUsers     int                   `json:"active_users"`
	RecentActivity  []ActivityView        `json:"recent_activity"`
	RoleDefinitions []rbac.RoleDefinition `json:"role_definitions"`
}

// ActivityView is one rendered activity feed entry
type ActivityView struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// UserView is one rendered admin user table row
type UserView struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Initials  string               `json:"initials"`
	Role      rbac.Role            `json:"role"`
	Status    directory.UserStatus `json:"status"`
	LastLogin string               `json:"last_login"`
	Avatar    string               `json:"avatar,omitempty"`
}

// AddUserRequest creates a directory user
type AddUserRequest struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  rbac.Role `json:"role"`
}

// UpdateRoleRequest changes a directory user's role
type UpdateRoleRequest struct {
	Role rbac.Role `json:"role"`
}

// UpdateStatusRequest changes a directory user's account state
type UpdateStatusRequest struct {
	Status directory.UserStatus `json:"status"`
}

// MessageView is one rendered inbox conversation
type MessageView struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Initials  string `json:"initials"`
	Preview   string `json:"preview"`
	Unread    bool   `json:"unread"`
	Timestamp string `json:"timestamp"`
}

// MessagesResponse is the admin inbox payload
type MessagesResponse struct {
	Messages []MessageView `json:"messages"`
	Unread   int           `json:"unread"`
}

// FAQEntry is one help-page question and answer
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SupportResponse is the help and support payload
type SupportResponse struct {
	FAQ          []FAQEntry        `json:"faq"`
	ContactEmail string            `json:"contact_email"`
	Systems      map[string]string `json:"systems"`
}

// DebugResponse exposes the resolved auth state for troubleshooting
type DebugResponse struct {
	Identity      rbac.Identity          `json:"identity"`
	Profile       map[string]interface{} `json:"profile"`
	SessionID     string                 `json:"session_id"`
	SessionExpiry time.Time              `json:"session_expiry"`
	RouteRules    []rbac.RouteRule       `json:"route_rules"`
}
