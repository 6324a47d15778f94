package directory

import (
	"errors"
	"time"

	"github.com/lumenhq/console/pkg/rbac"
)

// ErrNotFound is returned when a user or activity does not exist
var ErrNotFound = errors.New("not found")

// UserStatus is the account state shown in the admin user table
type UserStatus string

const (
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
)

// User is a managed account in the admin directory
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      rbac.Role  `json:"role"`
	Status    UserStatus `json:"status"`
	LastLogin time.Time  `json:"last_login"`
	AvatarURL string     `json:"avatar,omitempty"`
}

// ActivityType classifies activity feed entries
type ActivityType string

const (
	ActivityUser     ActivityType = "user"
	ActivitySystem   ActivityType = "system"
	ActivitySecurity ActivityType = "security"
)

// Activity is one entry in the admin activity feed
type Activity struct {
	ID        string       `json:"id"`
	User      string       `json:"user"`
	Action    string       `json:"action"`
	Type      ActivityType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}

// Message is one conversation entry in the admin inbox
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Preview   string    `json:"preview"`
	Unread    bool      `json:"unread"`
	CreatedAt time.Time `json:"created_at"`
}
