// Package config manages server configuration stored in config.yaml.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config stores all server-wide configuration.
// Loaded from config.yaml in the data directory, created with defaults if
// missing. CLI flags override individual fields after loading.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// Database is the snapshot file name, relative to the data directory.
	Database string `yaml:"database"`

	// JWTSecret signs API tokens, base64-encoded.
	// Auto-generated and written back if empty on first load.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenExpiryHours is the lifetime of issued tokens.
	TokenExpiryHours int `yaml:"token_expiry_hours"`

	// AuthRatePerMin limits login and register attempts per client IP.
	// 0 means unlimited.
	AuthRatePerMin int `yaml:"auth_rate_per_min"`

	// GeoDB is an optional path to a MaxMind MMDB file for annotating auth
	// log lines with the client country.
	GeoDB string `yaml:"geo_db,omitempty"`
}

// Default returns the default configuration, without a JWT secret.
func Default() *Config {
	return &Config{
		Addr:             "localhost:3000",
		Database:         "data.json",
		TokenExpiryHours: 24,
		AuthRatePerMin:   5,
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Database == "" {
		return errors.New("database must not be empty")
	}
	if c.TokenExpiryHours <= 0 {
		return errors.New("token_expiry_hours must be positive")
	}
	if c.AuthRatePerMin < 0 {
		return errors.New("auth_rate_per_min must be non-negative")
	}
	return nil
}

// Secret returns the decoded JWT secret.
func (c *Config) Secret() ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(c.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt_secret: %w", err)
	}
	return secret, nil
}

// Load reads config.yaml from dataDir, creating it with defaults if
// missing. A missing JWT secret is generated and written back, so restarts
// keep issued tokens valid.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, "config.yaml")
	cfg := Default()

	contents, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run, fall through and persist the defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	dirty := err != nil // file did not exist
	if cfg.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		cfg.JWTSecret = base64.StdEncoding.EncodeToString(secret)
		dirty = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	if dirty {
		if err := save(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
