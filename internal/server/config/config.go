// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the TaskKeeper server.
//
// Fields:
//   - Address: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Required.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required; the server
//     refuses to start without one rather than falling back to a known value.
//   - TokenValidityDuration: access token lifetime.
//   - DBMaxOpenConns: cap on concurrent connections to the database.
type Config struct {
	Address               string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	DBMaxOpenConns        int
}

// LoadDefaults populates Config with development defaults. Secrets and the
// database location have no defaults and must be supplied externally.
func (c *Config) LoadDefaults() {
	c.Address = ":8000"
	c.TokenValidityDuration = 30 * time.Minute
	c.DBMaxOpenConns = 5
}

// Validate reports configuration the server must not start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("config: secret key is required")
	}
	if c.DatabaseDSN == "" {
		return errors.New("config: database DSN is required")
	}
	if c.TokenValidityDuration <= 0 {
		return errors.New("config: token validity must be positive")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from environment variables and
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
