package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/console/pkg/rbac"
)

func setRequiredOIDCEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONSOLE_OIDC_ISSUER_URL", "https://tenant.auth0.com/")
	t.Setenv("CONSOLE_OIDC_CLIENT_ID", "client-id")
	t.Setenv("CONSOLE_OIDC_CLIENT_SECRET", "client-secret")
	t.Setenv("CONSOLE_BASE_URL", "https://console.example.com")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredOIDCEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "console_session", cfg.Session.CookieName)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, rbac.RoleUser, cfg.RBAC.DefaultRole)
	assert.Equal(t, time.Minute, cfg.RBAC.TokenCacheTTL)
	assert.Equal(t, 1000, cfg.RBAC.TokenCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.RBAC.SweepInterval)
	assert.Equal(t, "sqlite3", cfg.Directory.Driver)
}

func TestLoadConfig_MissingOIDC(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{"missing issuer", "CONSOLE_OIDC_ISSUER_URL"},
		{"missing client id", "CONSOLE_OIDC_CLIENT_ID"},
		{"missing client secret", "CONSOLE_OIDC_CLIENT_SECRET"},
		{"missing base URL", "CONSOLE_BASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredOIDCEnv(t)
			t.Setenv(tt.omit, "")

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Run("unknown default role", func(t *testing.T) {
		setRequiredOIDCEnv(t)
		t.Setenv("CONSOLE_DEFAULT_ROLE", "Superuser")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("scopes must include openid", func(t *testing.T) {
		setRequiredOIDCEnv(t)
		t.Setenv("CONSOLE_OIDC_SCOPES", "profile,email")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("unknown directory driver", func(t *testing.T) {
		setRequiredOIDCEnv(t)
		t.Setenv("CONSOLE_DB_DRIVER", "mysql")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("health port must differ from server port", func(t *testing.T) {
		setRequiredOIDCEnv(t)
		t.Setenv("CONSOLE_PORT", "8080")
		t.Setenv("CONSOLE_HEALTH_PORT", "8080")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestLoadConfig_PostgresURLImpliesDriver(t *testing.T) {
	setRequiredOIDCEnv(t)
	t.Setenv("CONSOLE_DATABASE_URL", "postgres://console:pw@localhost/console?sslmode=disable")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Directory.Driver)
	assert.Equal(t, "postgres://console:pw@localhost/console?sslmode=disable", cfg.Directory.DSN)
}

func TestRBACConfig_Build(t *testing.T) {
	setRequiredOIDCEnv(t)
	t.Setenv("CONSOLE_ADMIN_EMAILS", "root@example.com, ops@example.com")
	t.Setenv("CONSOLE_CLAIMS_NAMESPACE", "https://other.example.com/roles")
	t.Setenv("CONSOLE_DEFAULT_ROLE", "Guest")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	built := cfg.RBAC.Build()
	assert.Equal(t, "https://other.example.com/roles", built.ClaimsNamespace)
	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, built.AdminEmails)
	assert.Equal(t, rbac.RoleGuest, built.DefaultRole)
	// The built-in role and route tables carry through
	assert.Len(t, built.Roles, 4)
	assert.NotEmpty(t, built.Routes)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_GO", "90s")
	t.Setenv("TEST_DURATION_MS", "60000")
	t.Setenv("TEST_DURATION_BAD", "soon")

	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION_GO", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION_MS", time.Hour))
	assert.Equal(t, time.Hour, getEnvDuration("TEST_DURATION_BAD", time.Hour))
	assert.Equal(t, time.Hour, getEnvDuration("TEST_DURATION_UNSET", time.Hour))
}
