package config

import (
	"encoding/json"
	"os"

	"github.com/roomify-app/roomify/internal/flagx"
	"github.com/roomify-app/roomify/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Durations accept both strings such as "15m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP              string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC              string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                   string         `json:"database_dsn"`
	SecretKey                     string         `json:"secret_key"`
	AccessTokenValidityDuration   timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration  timex.Duration `json:"refresh_token_validity_duration"`
	RecoveryTokenValidityDuration timex.Duration `json:"recovery_token_validity_duration"`
	EncryptionKey                 string         `json:"encryption_key"`
	RedisURL                      string         `json:"redis_url"`
	StripeSecretKey               string         `json:"stripe_secret_key"`
	StripeBaseURL                 string         `json:"stripe_base_url"`
	AuthRateLimit                 int            `json:"auth_rate_limit"`
	TrustProxy                    *bool          `json:"trust_proxy"`
	Debug                         *bool          `json:"debug"`
}

// parseJson loads configuration values from the file named by -c / -config.
// Only fields present with a non-zero value override the current Config.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overrideString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overrideString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overrideString(&config.DatabaseDSN, c.DatabaseDSN)
	overrideString(&config.SecretKey, c.SecretKey)
	overrideString(&config.EncryptionKey, c.EncryptionKey)
	overrideString(&config.RedisURL, c.RedisURL)
	overrideString(&config.StripeSecretKey, c.StripeSecretKey)
	overrideString(&config.StripeBaseURL, c.StripeBaseURL)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RecoveryTokenValidityDuration.Duration > 0 {
		config.RecoveryTokenValidityDuration = c.RecoveryTokenValidityDuration.Duration
	}
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.TrustProxy != nil {
		config.TrustProxy = *c.TrustProxy
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
