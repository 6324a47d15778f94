package claims

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode indicates malformed token structure: not three dot-separated
// base64url segments, or a claims segment that is not valid base64/JSON.
// Callers treat it as "no roles from token" and fall through to profile
// extraction; it is never surfaced to the user.
var ErrDecode = errors.New("token decode failed")

// Payload is a decoded JWT claims payload
type Payload map[string]interface{}

// Decode extracts the claims payload from a JWT without verifying its
// signature. The identity provider verified the token when the session
// was established; this path only needs the claims.
func Decode(token string) (Payload, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Payload(claims), nil
}

// Expiration returns the token's exp claim as a time, or false when the
// token cannot be decoded or carries no exp
func Expiration(token string) (time.Time, bool) {
	payload, err := Decode(token)
	if err != nil {
		return time.Time{}, false
	}
	return payload.expiresAt()
}

// IsExpired reports whether the token's exp claim has passed. Undecodable
// tokens and tokens without exp count as expired.
func IsExpired(token string) bool {
	exp, ok := Expiration(token)
	if !ok {
		return true
	}
	return !exp.After(time.Now())
}

func (p Payload) expiresAt() (time.Time, bool) {
	switch v := p["exp"].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case jwt.NumericDate:
		return v.Time, true
	}
	return time.Time{}, false
}

// TokenFromSession digs the raw ID token out of a session-shaped map.
// Identity-provider SDKs disagree on where they put it, so several known
// locations are tried.
func TokenFromSession(session map[string]interface{}) string {
	if session == nil {
		return ""
	}

	if s, ok := session["id_token"].(string); ok && s != "" {
		return s
	}
	if s, ok := session["idToken"].(string); ok && s != "" {
		return s
	}
	for _, nested := range []string{"tokenSet", "tokens"} {
		m, _ := session[nested].(map[string]interface{})
		if m == nil {
			continue
		}
		if s, ok := m["idToken"].(string); ok && s != "" {
			return s
		}
		if s, ok := m["id_token"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
