// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Plan     PlanConfig
	GitHub   GitHubConfig
	Database DatabaseConfig
	Audit    AuditConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Plan sources.
const (
	SourceLocal  = "local"
	SourceGitHub = "github"
)

// PlanConfig holds settings for loading, editing and saving the plan file.
type PlanConfig struct {
	// Source selects where the plan lives: local or github (default: local)
	Source string `env:"PLAN_SOURCE" default:"local"`

	// Path is the local plan file (default: public/plan.csv)
	Path string `env:"PLAN_PATH" default:"public/plan.csv"`

	// AutosaveDelay is how long edits settle before the plan is saved (default: 1.5s)
	AutosaveDelay time.Duration `env:"PLAN_AUTOSAVE_DELAY" default:"1500ms"`

	// SaveTimeout bounds a single save to the configured sink (default: 30s)
	SaveTimeout time.Duration `env:"PLAN_SAVE_TIMEOUT" default:"30s"`

	// Watch reloads the plan when the local file changes on disk (default: true)
	Watch bool `env:"PLAN_WATCH" default:"true"`

	// MaxBodySize is the largest CSV accepted by the raw save endpoint (default: 10MB)
	MaxBodySize int64 `env:"PLAN_MAX_BODY_SIZE" default:"10485760"`
}

// GitHubConfig holds settings for the GitHub contents API sink.
// Owner, repo, branch and path may also come from the settings file.
type GitHubConfig struct {
	// Token is a personal access token with contents:write (required for github source)
	Token string `env:"GITHUB_TOKEN" envAlt:"GH_TOKEN"`

	// SettingsFile stores the repository target between runs (default: runplan.yaml)
	SettingsFile string `env:"GITHUB_SETTINGS_FILE" default:"runplan.yaml"`

	Owner  string `env:"GITHUB_OWNER"`
	Repo   string `env:"GITHUB_REPO"`
	Branch string `env:"GITHUB_BRANCH"`
	Path   string `env:"GITHUB_PATH"`

	// APIURL is the API base URL (default: https://api.github.com)
	APIURL string `env:"GITHUB_API_URL" default:"https://api.github.com"`

	// Timeout is the HTTP client timeout (default: 15s)
	Timeout time.Duration `env:"GITHUB_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds database connection settings.
// The database is optional; without it edit history is kept in memory.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 5)
	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database URL was configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// AuditConfig holds edit history retention settings.
type AuditConfig struct {
	// RetentionDays is how long edit entries are kept (default: 365)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"365"`

	// PruneInterval is how often old entries are removed (default: 24h)
	PruneInterval time.Duration `env:"AUDIT_PRUNE_INTERVAL" default:"24h"`

	// MemoryLimit caps the in-memory history when no database is configured (default: 1000)
	MemoryLimit int `env:"AUDIT_MEMORY_LIMIT" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects mutating endpoints with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
