// Package config holds the server configuration, loadable from a YAML
// file for deployments or assembled from flags for development.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Listen      string   `yaml:"listen"`
	TLSCert     string   `yaml:"tls_cert"`
	TLSKey      string   `yaml:"tls_key"`
	CORSOrigins []string `yaml:"cors_origins"`

	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
}

// SessionConfig configures session issuance.
type SessionConfig struct {
	// Secret signs session tokens. Minimum 32 bytes.
	Secret string `yaml:"secret"`
	// TTL is the session lifetime.
	TTL time.Duration `yaml:"ttl"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Type is "memory" or "postgres".
	Type     string         `yaml:"type"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig configures the PostgreSQL pool.
type PostgresConfig struct {
	ConnString      string `yaml:"conn_string"`
	MaxConns        int32  `yaml:"max_conns"`
	MinConns        int32  `yaml:"min_conns"`
	MaxConnLifetime int32  `yaml:"max_conn_lifetime"`
	MaxConnIdleTime int32  `yaml:"max_conn_idle_time"`
	AutoMigrate     bool   `yaml:"auto_migrate"`
}

// RedisConfig configures the optional cross-instance event broker. An
// empty Addr disables redis; events then stay in-process.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = "0.0.0.0:8080"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 168 * time.Hour
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
}

// Validate checks the configuration for deployment mistakes that should
// stop the server from starting.
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return errors.New("session secret must be at least 32 bytes")
	}

	switch c.Store.Type {
	case "memory":
	case "postgres":
		if c.Store.Postgres.ConnString == "" {
			return errors.New("postgres connection string is required when store type is postgres")
		}
	default:
		return fmt.Errorf("unknown store type %q (expected memory or postgres)", c.Store.Type)
	}

	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}

	return nil
}
