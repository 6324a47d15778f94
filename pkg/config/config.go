package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	OIDC          OIDCConfig
	RBAC          RBACConfig
	Session       SessionConfig
	Directory     DirectoryConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// OIDCConfig holds identity provider configuration. IssuerURL, ClientID,
// ClientSecret, and BaseURL are required; missing any of them is a fatal
// startup condition.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	BaseURL      string
	Audience     string
	Scopes       []string
}

// RBACConfig holds role extraction and route rule configuration
type RBACConfig struct {
	ClaimsNamespace string
	AdminEmails     []string
	DefaultRole     rbac.Role
	TokenCacheTTL   time.Duration
	TokenCacheSize  int
	SweepInterval   time.Duration

	// RouteRulesFile optionally overrides the built-in route table with a
	// YAML file, hot-reloaded on change. Empty means built-ins only.
	RouteRulesFile string
}

// SessionConfig holds login session configuration
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	SweepInterval time.Duration
	CookieSecure  bool

	// RedisURL switches the session store from in-memory to Redis
	RedisURL string
}

// DirectoryConfig holds user directory database configuration
type DirectoryConfig struct {
	// Driver is "sqlite3" or "postgres"
	Driver string
	DSN    string
	Seed   bool
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		OIDC:          loadOIDCConfig(),
		RBAC:          loadRBACConfig(),
		Session:       loadSessionConfig(),
		Directory:     loadDirectoryConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("CONSOLE_HOST", "0.0.0.0"),
		Port:            getEnv("CONSOLE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("CONSOLE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CONSOLE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("CONSOLE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("CONSOLE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("CONSOLE_HEALTH_PORT", "9090"),
	}
}

func loadOIDCConfig() OIDCConfig {
	scopes := strings.Split(getEnv("CONSOLE_OIDC_SCOPES", "openid,profile,email"), ",")
	for i := range scopes {
		scopes[i] = strings.TrimSpace(scopes[i])
	}
	return OIDCConfig{
		IssuerURL:    getEnv("CONSOLE_OIDC_ISSUER_URL", ""),
		ClientID:     getEnv("CONSOLE_OIDC_CLIENT_ID", ""),
		ClientSecret: getEnv("CONSOLE_OIDC_CLIENT_SECRET", ""),
		BaseURL:      getEnv("CONSOLE_BASE_URL", ""),
		Audience:     getEnv("CONSOLE_OIDC_AUDIENCE", ""),
		Scopes:       scopes,
	}
}

func loadRBACConfig() RBACConfig {
	adminEmails := []string{}
	for _, email := range strings.Split(getEnv("CONSOLE_ADMIN_EMAILS", ""), ",") {
		email = strings.TrimSpace(email)
		if email != "" {
			adminEmails = append(adminEmails, email)
		}
	}

	return RBACConfig{
		ClaimsNamespace: getEnv("CONSOLE_CLAIMS_NAMESPACE", rbac.DefaultConfig().ClaimsNamespace),
		AdminEmails:     adminEmails,
		DefaultRole:     rbac.Role(getEnv("CONSOLE_DEFAULT_ROLE", string(rbac.RoleUser))),
		TokenCacheTTL:   getEnvDuration("CONSOLE_TOKEN_CACHE_TTL", time.Minute),
		TokenCacheSize:  getEnvInt("CONSOLE_TOKEN_CACHE_SIZE", 1000),
		SweepInterval:   getEnvDuration("CONSOLE_TOKEN_CACHE_SWEEP", 5*time.Minute),
		RouteRulesFile:  getEnv("CONSOLE_ROUTE_RULES_FILE", ""),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName:    getEnv("CONSOLE_SESSION_COOKIE", "console_session"),
		TTL:           getEnvDuration("CONSOLE_SESSION_TTL", 8*time.Hour),
		SweepInterval: getEnvDuration("CONSOLE_SESSION_SWEEP", 10*time.Minute),
		CookieSecure:  getEnvBool("CONSOLE_SESSION_SECURE", true),
		RedisURL:      getEnv("CONSOLE_REDIS_URL", ""),
	}
}

func loadDirectoryConfig() DirectoryConfig {
	cfg := DirectoryConfig{
		Driver: getEnv("CONSOLE_DB_DRIVER", "sqlite3"),
		DSN:    getEnv("CONSOLE_DB_DSN", "file:console.db?_fk=1"),
		Seed:   getEnvBool("CONSOLE_DB_SEED", true),
	}
	// A postgres URL implies the postgres driver
	if url := getEnv("CONSOLE_DATABASE_URL", ""); url != "" {
		cfg.Driver = "postgres"
		cfg.DSN = url
	}
	return cfg
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("CONSOLE_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("CONSOLE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("CONSOLE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("CONSOLE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("CONSOLE_OTEL_SERVICE_NAME", "console"),
		OTelServiceVersion: getEnv("CONSOLE_OTEL_SERVICE_VERSION", observability.Version),
		OTelInsecure:       getEnvBool("CONSOLE_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Missing identity provider configuration is fatal: the service
	// cannot authenticate anyone without it.
	if c.OIDC.IssuerURL == "" {
		return fmt.Errorf("CONSOLE_OIDC_ISSUER_URL is required")
	}
	if c.OIDC.ClientID == "" {
		return fmt.Errorf("CONSOLE_OIDC_CLIENT_ID is required")
	}
	if c.OIDC.ClientSecret == "" {
		return fmt.Errorf("CONSOLE_OIDC_CLIENT_SECRET is required")
	}
	if c.OIDC.BaseURL == "" {
		return fmt.Errorf("CONSOLE_BASE_URL is required")
	}

	hasOpenID := false
	for _, scope := range c.OIDC.Scopes {
		if scope == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("'openid' scope is required")
	}

	if !roleKnown(c.RBAC.DefaultRole) {
		return fmt.Errorf("invalid default role: %s", c.RBAC.DefaultRole)
	}
	if c.RBAC.TokenCacheSize <= 0 {
		return fmt.Errorf("token cache size must be positive")
	}

	switch c.Directory.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid directory driver: %s (must be sqlite3 or postgres)", c.Directory.Driver)
	}

	if c.Observability.OTelEnabled && c.Observability.OTelEndpoint == "" {
		return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
	}

	return nil
}

func roleKnown(role rbac.Role) bool {
	for _, d := range rbac.DefaultConfig().Roles {
		if d.Role == role {
			return true
		}
	}
	return false
}

// RBACConfig.Build assembles the rbac.Config from the environment options
// plus the built-in role and route tables
func (rc RBACConfig) Build() rbac.Config {
	cfg := rbac.DefaultConfig()
	cfg.ClaimsNamespace = rc.ClaimsNamespace
	cfg.AdminEmails = rc.AdminEmails
	cfg.DefaultRole = rc.DefaultRole
	return cfg
}

func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
// Accepts Go duration strings ("90s") and bare millisecond counts.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
