// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the finance tracker server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - RecordStoreDSN: SQLite DSN of the authoritative record store.
//   - SecondaryDSN: PostgreSQL DSN (pgx) of the analytical store. Empty
//     selects the in-memory stub adapter.
//   - SecondaryTimeout: per-operation timeout for secondary store calls.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: access token lifetime.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings for
//     settings backups. Empty S3BaseEndpoint disables backups.
type Config struct {
	EndpointAddr                string
	RecordStoreDSN              string
	SecondaryDSN                string
	SecondaryTimeout            time.Duration
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.RecordStoreDSN = "fintrack.db"
	c.SecondaryDSN = ""
	c.SecondaryTimeout = 5 * time.Second
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "fintrack"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
