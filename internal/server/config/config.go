// Package config handles configuration for the server component,
// including defaults, environment, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"time"

	"github.com/roomify-app/roomify/internal/common"
)

// Config holds runtime settings for the Roomify server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the JSON API and the session event stream.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Required.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - RecoveryTokenValidityDuration: lifetime of password recovery tokens.
//   - EncryptionKey: passphrase for API key encryption at rest.
//   - RedisURL: optional; when set, session events fan out through redis pub/sub.
//   - StripeSecretKey / StripeBaseURL: hosted checkout backend.
//   - AuthRateLimit: auth requests per hour allowed per client address.
//   - TrustProxy: key the auth limit on X-Forwarded-For instead of the peer address.
//     Enable only behind a proxy that overwrites the header.
//   - Debug: verbose logging.
type Config struct {
	EndpointAddrHTTP              string
	EndpointAddrGRPC              string
	DatabaseDSN                   string
	SecretKey                     string
	AccessTokenValidityDuration   time.Duration
	RefreshTokenValidityDuration  time.Duration
	RecoveryTokenValidityDuration time.Duration
	EncryptionKey                 string
	RedisURL                      string
	StripeSecretKey               string
	StripeBaseURL                 string
	AuthRateLimit                 int
	TrustProxy                    bool
	Debug                         bool
}

var (
	ErrMissingDSN    = errors.New("database DSN is required")
	ErrMissingSecret = errors.New("JWT secret key is required")
)

// LoadDefaults populates Config with development defaults.
// DatabaseDSN and SecretKey stay empty and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 30 * 24 * time.Hour
	c.RecoveryTokenValidityDuration = time.Hour
	c.StripeBaseURL = "https://api.stripe.com"
	c.AuthRateLimit = 120
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return ErrMissingDSN
	}
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	return nil
}

// EncryptionPassphrase returns the configured passphrase, or the built-in
// fallback with fallback set to true.
func (c *Config) EncryptionPassphrase() (passphrase string, fallback bool) {
	if c.EncryptionKey == "" {
		return common.DefaultEncryptionPassphrase, true
	}
	return c.EncryptionKey, false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
