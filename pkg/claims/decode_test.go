package claims

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecode(t *testing.T) {
	token := makeToken(t, jwt.MapClaims{
		"sub":   "auth0|123",
		"email": "person@example.com",
		"https://console.lumenhq.io/roles": []string{"Admin"},
	})

	payload, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", payload["sub"])
	assert.Equal(t, "person@example.com", payload["email"])
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "hello world"},
		{"two segments", "abc.def"},
		{"garbage segments", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestExpiration(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := makeToken(t, jwt.MapClaims{"sub": "x", "exp": exp})

	got, ok := Expiration(token)
	require.True(t, ok)
	assert.Equal(t, exp, got.Unix())
}

func TestExpiration_NoExpClaim(t *testing.T) {
	token := makeToken(t, jwt.MapClaims{"sub": "x"})

	_, ok := Expiration(token)
	assert.False(t, ok)
}

func TestIsExpired(t *testing.T) {
	future := makeToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	past := makeToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	noExp := makeToken(t, jwt.MapClaims{"sub": "x"})

	assert.False(t, IsExpired(future))
	assert.True(t, IsExpired(past))
	assert.True(t, IsExpired(noExp))
	assert.True(t, IsExpired("not-a-token"))
}

func TestTokenFromSession(t *testing.T) {
	tests := []struct {
		name    string
		session map[string]interface{}
		want    string
	}{
		{"nil session", nil, ""},
		{"id_token key", map[string]interface{}{"id_token": "tok1"}, "tok1"},
		{"idToken key", map[string]interface{}{"idToken": "tok2"}, "tok2"},
		{"nested tokenSet", map[string]interface{}{"tokenSet": map[string]interface{}{"idToken": "tok3"}}, "tok3"},
		{"nested tokens with snake case", map[string]interface{}{"tokens": map[string]interface{}{"id_token": "tok4"}}, "tok4"},
		{"empty strings skipped", map[string]interface{}{"id_token": "", "idToken": "tok5"}, "tok5"},
		{"nothing present", map[string]interface{}{"access_token": "nope"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFromSession(tt.session))
		})
	}
}
