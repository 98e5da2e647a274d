package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr        = "ROOMIFY_HTTP_ADDR"
	EnvGRPCAddr        = "ROOMIFY_GRPC_ADDR"
	EnvDatabaseDSN     = "ROOMIFY_DATABASE_DSN"
	EnvJWTSecret       = "ROOMIFY_JWT_SECRET"
	EnvAccessTTL       = "ROOMIFY_ACCESS_TOKEN_TTL"
	EnvRefreshTTL      = "ROOMIFY_REFRESH_TOKEN_TTL"
	EnvRecoveryTTL     = "ROOMIFY_RECOVERY_TOKEN_TTL"
	EnvEncryptionKey   = "ROOMIFY_ENCRYPTION_KEY"
	EnvRedisURL        = "ROOMIFY_REDIS_URL"
	EnvStripeSecretKey = "ROOMIFY_STRIPE_SECRET_KEY"
	EnvStripeBaseURL   = "ROOMIFY_STRIPE_BASE_URL"
	EnvAuthRateLimit   = "ROOMIFY_AUTH_RATE_LIMIT"
	EnvTrustProxy      = "ROOMIFY_TRUST_PROXY"
	EnvDebug           = "ROOMIFY_DEBUG"
)

// loadDotEnv is a seam for tests.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv loads an optional .env file and overlays every ROOMIFY_* variable
// that is set. Unparsable numbers and durations are ignored.
func parseEnv(config *Config) {
	loadDotEnv()

	setString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	setString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	setString(&config.DatabaseDSN, EnvDatabaseDSN)
	setString(&config.SecretKey, EnvJWTSecret)
	setString(&config.EncryptionKey, EnvEncryptionKey)
	setString(&config.RedisURL, EnvRedisURL)
	setString(&config.StripeSecretKey, EnvStripeSecretKey)
	setString(&config.StripeBaseURL, EnvStripeBaseURL)

	setDuration(&config.AccessTokenValidityDuration, EnvAccessTTL)
	setDuration(&config.RefreshTokenValidityDuration, EnvRefreshTTL)
	setDuration(&config.RecoveryTokenValidityDuration, EnvRecoveryTTL)

	if v, ok := os.LookupEnv(EnvAuthRateLimit); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.AuthRateLimit = n
		}
	}
	if v, ok := os.LookupEnv(EnvTrustProxy); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.TrustProxy = b
		}
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Debug = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
