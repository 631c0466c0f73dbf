// Package config loads habits configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Stores.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// DevelopmentBaseURL is the API location assumed when running locally.
const DevelopmentBaseURL = "http://localhost:8080/api"

// ErrBaseURLRequired is returned when production has no API base URL.
var ErrBaseURLRequired = errors.New("client.base_url (HABITS_API_URL) must be set in production")

// ClientConfig configures how habitctl reaches the API. Timezone is an IANA
// name used to decide what "today" is.
type ClientConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Timezone string        `yaml:"timezone"`
}

// RedisConfig holds connection settings for the redis store. Prefix
// namespaces every key.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// MetricsConfig controls the /metrics endpoint. PasswordHash is a bcrypt hash
// produced by "habits hash-password".
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// ServerConfig configures the habits API server. Store selects memory,
// postgres or redis.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	Store       string        `yaml:"store"`
	DatabaseURL string        `yaml:"database_url"`
	Redis       RedisConfig   `yaml:"redis"`
	Metrics     MetricsConfig `yaml:"metrics"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

// Config is the merged configuration of both binaries: defaults, then the
// YAML file, then environment variables.
type Config struct {
	Env      string       `yaml:"env"`
	LogLevel string       `yaml:"log_level"`
	Client   ClientConfig `yaml:"client"`
	Server   ServerConfig `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:      EnvDevelopment,
		LogLevel: "info",
		Client: ClientConfig{
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			Store:       StoreMemory,
			Redis:       RedisConfig{Addr: "localhost:6379", Prefix: "habits"},
			Metrics:     MetricsConfig{Enabled: true, Username: "metrics"},
			CORSOrigins: []string{"*"},
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close() //nolint:errcheck

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) error {
	if v := os.Getenv("HABITS_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("HABITS_API_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("HABITS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HABITS_TIMEOUT: %w", err)
		}
		cfg.Client.Timeout = d
	}
	if v := os.Getenv("HABITS_TZ"); v != "" {
		cfg.Client.Timezone = v
	}

	if v := os.Getenv("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HABITS_STORE"); v != "" {
		cfg.Server.Store = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Server.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Server.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Server.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Server.Redis.DB = n
	}
	if v := os.Getenv("METRICS_PASSWORD_HASH"); v != "" {
		cfg.Server.Metrics.PasswordHash = v
	}
	return nil
}

// Validate checks settings shared by both binaries.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.Client.Timeout < 0 {
		return errors.New("client.timeout must not be negative")
	}
	if c.Client.Timezone != "" {
		if _, err := time.LoadLocation(c.Client.Timezone); err != nil {
			return fmt.Errorf("client.timezone: %w", err)
		}
	}
	return nil
}

// ValidateServer checks the settings the server needs for its store.
func (c *Config) ValidateServer() error {
	switch c.Server.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Server.DatabaseURL == "" {
			return errors.New("server.database_url (DATABASE_URL) is required for the postgres store")
		}
	case StoreRedis:
		if c.Server.Redis.Addr == "" {
			return errors.New("server.redis.addr (REDIS_ADDR) is required for the redis store")
		}
	default:
		return fmt.Errorf("server.store must be memory, postgres or redis, got %q", c.Server.Store)
	}
	return nil
}

// BaseURL resolves the API base URL. Development falls back to
// DevelopmentBaseURL; production has no fallback.
func (c *Config) BaseURL() (string, error) {
	raw := strings.TrimRight(c.Client.BaseURL, "/")
	if raw == "" {
		if c.Env == EnvProduction {
			return "", ErrBaseURLRequired
		}
		return DevelopmentBaseURL, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("client.base_url %q is not an absolute URL", raw)
	}
	return raw, nil
}

// Location returns the time zone used for "today" and the weekly window.
// An unset timezone means UTC.
func (c *Config) Location() *time.Location {
	if c.Client.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Client.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
