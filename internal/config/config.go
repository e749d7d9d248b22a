// Package config loads the server configuration from a YAML file with
// environment variable expansion and duration parsing.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	Pagination PaginationConfig `yaml:"pagination"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds the Postgres connection string.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig holds token signing and authorization settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	// AdminOverride lets ADMIN accounts update and delete tasks they do not
	// own. Off by default.
	AdminOverride bool `yaml:"admin_override"`

	TokenTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TokenTTLRaw string `yaml:"token_ttl"`
}

// LimiterConfig holds login throttling settings.
type LimiterConfig struct {
	MaxFailures int `yaml:"max_failures"`

	Window   time.Duration `yaml:"-"`
	BlockFor time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	WindowRaw   string `yaml:"window"`
	BlockForRaw string `yaml:"block_for"`
}

// PaginationConfig holds the fixed page size for list endpoints.
type PaginationConfig struct {
	PageSize int `yaml:"page_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Defaults applied for fields left empty in the file.
const (
	DefaultAddr        = ":8080"
	DefaultTokenTTL    = time.Hour
	DefaultPageSize    = 10
	DefaultMaxFailures = 5
	DefaultWindow      = 15 * time.Minute
	DefaultBlockFor    = 15 * time.Minute
)

// Load reads the configuration file at path. Environment variables in the
// format ${VAR_NAME} are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. An unset variable expands to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	if c.Pagination.PageSize == 0 {
		c.Pagination.PageSize = DefaultPageSize
	}
	if c.Limiter.MaxFailures == 0 {
		c.Limiter.MaxFailures = DefaultMaxFailures
	}
	if c.Limiter.Window == 0 {
		c.Limiter.Window = DefaultWindow
	}
	if c.Limiter.BlockFor == 0 {
		c.Limiter.BlockFor = DefaultBlockFor
	}
}

// Validate checks that all required fields are present. Returns an error
// describing the first failure encountered.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Pagination.PageSize < 0 {
		return fmt.Errorf("pagination.page_size must be positive")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.TokenTTLRaw != "" {
		cfg.Auth.TokenTTL, err = time.ParseDuration(cfg.Auth.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Auth.TokenTTLRaw, err)
		}
	}

	if cfg.Limiter.WindowRaw != "" {
		cfg.Limiter.Window, err = time.ParseDuration(cfg.Limiter.WindowRaw)
		if err != nil {
			return fmt.Errorf("parsing window %q: %w", cfg.Limiter.WindowRaw, err)
		}
	}

	if cfg.Limiter.BlockForRaw != "" {
		cfg.Limiter.BlockFor, err = time.ParseDuration(cfg.Limiter.BlockForRaw)
		if err != nil {
			return fmt.Errorf("parsing block_for %q: %w", cfg.Limiter.BlockForRaw, err)
		}
	}

	return nil
}
