// Package config loads and validates agent configuration from the environment
// and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds agent configuration loaded from the environment.
type Config struct {
	// APIBaseURL is the backend API root (e.g. https://api.example.com/api). Required.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	// TenantID is sent in TenantHeader on every backend request when set.
	TenantID     string `mapstructure:"TENANT_ID"`
	TenantHeader string `mapstructure:"TENANT_HEADER"`

	// AgentAddr is where the local agent API listens.
	AgentAddr string `mapstructure:"AGENT_ADDR"`
	// AllowedOrigins is a comma-separated CORS allow list for the shell.
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// StoreBackend selects the session store: memory, redis or postgres.
	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	StoreNamespace string `mapstructure:"STORE_NAMESPACE"`
	// StoreSecret, when set, encrypts every stored value.
	StoreSecret string        `mapstructure:"STORE_SECRET"`
	StoreTTL    time.Duration `mapstructure:"STORE_TTL"`
	RedisURL    string        `mapstructure:"REDIS_URL"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`

	// Session policy
	SessionAbsoluteTimeout time.Duration `mapstructure:"SESSION_ABSOLUTE_TIMEOUT"`
	SessionIdleTimeout     time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	SessionCheckInterval   time.Duration `mapstructure:"SESSION_CHECK_INTERVAL"`
	ActivityThrottle       time.Duration `mapstructure:"ACTIVITY_THROTTLE"`
	UnauthorizedCooldown   time.Duration `mapstructure:"UNAUTHORIZED_COOLDOWN"`
	ToastSuppression       time.Duration `mapstructure:"TOAST_SUPPRESSION"`
	LogoutResetDelay       time.Duration `mapstructure:"LOGOUT_RESET_DELAY"`
	LogoutTimeout          time.Duration `mapstructure:"LOGOUT_TIMEOUT"`

	// HTTPTimeout bounds every backend request.
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	// LogLevel is debug, info, warn or error. LogFormat is text or json.
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore missing file

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("TENANT_ID", "")
	v.SetDefault("TENANT_HEADER", "X-Tenant-ID")
	v.SetDefault("AGENT_ADDR", "127.0.0.1:7070")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("STORE_BACKEND", StoreMemory)
	v.SetDefault("STORE_NAMESPACE", "default")
	v.SetDefault("STORE_SECRET", "")
	v.SetDefault("STORE_TTL", domain.DefaultAbsoluteTimeout)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_ABSOLUTE_TIMEOUT", domain.DefaultAbsoluteTimeout)
	v.SetDefault("SESSION_IDLE_TIMEOUT", domain.DefaultIdleTimeout)
	v.SetDefault("SESSION_CHECK_INTERVAL", domain.DefaultCheckInterval)
	v.SetDefault("ACTIVITY_THROTTLE", domain.DefaultActivityThrottle)
	v.SetDefault("UNAUTHORIZED_COOLDOWN", domain.DefaultUnauthorizedCooldown)
	v.SetDefault("TOAST_SUPPRESSION", domain.DefaultToastSuppression)
	v.SetDefault("LOGOUT_RESET_DELAY", domain.DefaultLogoutResetDelay)
	v.SetDefault("LOGOUT_TIMEOUT", domain.DefaultLogoutTimeout)
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("config: API_BASE_URL must be set")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: API_BASE_URL %q is not an absolute url", c.APIBaseURL)
	}
	if c.AgentAddr == "" {
		return errors.New("config: AGENT_ADDR must be set")
	}

	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == StoreRedis && c.RedisURL == "" {
		return errors.New("config: REDIS_URL must be set when STORE_BACKEND=redis")
	}

	if c.SessionIdleTimeout > 0 && c.SessionAbsoluteTimeout > 0 && c.SessionIdleTimeout > c.SessionAbsoluteTimeout {
		return errors.New("config: SESSION_IDLE_TIMEOUT must not exceed SESSION_ABSOLUTE_TIMEOUT")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Policy returns the session policy, with unset values falling back to defaults.
func (c *Config) Policy() domain.SessionPolicy {
	return domain.SessionPolicy{
		AbsoluteTimeout:  c.SessionAbsoluteTimeout,
		IdleTimeout:      c.SessionIdleTimeout,
		CheckInterval:    c.SessionCheckInterval,
		ActivityThrottle: c.ActivityThrottle,
		ToastSuppression: c.ToastSuppression,
		LogoutResetDelay: c.LogoutResetDelay,
		LogoutTimeout:    c.LogoutTimeout,
	}.WithDefaults()
}

// Origins returns the CORS allow list from the comma-separated config.
func (c *Config) Origins() []string {
	if c == nil || c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SlogLevel maps LogLevel onto slog. Unknown values give info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
