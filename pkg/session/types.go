package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist or has expired
var ErrNotFound = errors.New("session not found")

// Session is one authenticated login. Profile holds the identity
// provider's claims as delivered; RawIDToken keeps the signed ID token so
// the RBAC layer can apply its token-first role extraction.
type Session struct {
	ID         string                 `json:"id"`
	Profile    map[string]interface{} `json:"profile"`
	RawIDToken string                 `json:"raw_id_token"`
	CreatedAt  time.Time              `json:"created_at"`
	ExpiresAt  time.Time              `json:"expires_at"`
}

// Email is a convenience accessor for the profile email claim
func (s *Session) Email() string {
	if s == nil || s.Profile == nil {
		return ""
	}
	email, _ := s.Profile["email"].(string)
	return email
}

// Store persists login sessions. Implementations must tolerate
// concurrent use from overlapping requests.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
