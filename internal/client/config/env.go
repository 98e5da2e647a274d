package config

import (
	"os"
	"strconv"
	"time"

	"github.com/roomify-app/roomify/internal/flagx"
)

// Environment variables read by parseEnv.
const (
	EnvServerURL      = "ROOMIFY_SERVER_URL"
	EnvImageAPIURL    = "ROOMIFY_IMAGE_API_URL"
	EnvStatePath      = "ROOMIFY_STATE_PATH"
	EnvRequestTimeout = "ROOMIFY_REQUEST_TIMEOUT"
	EnvDebug          = "ROOMIFY_DEBUG"
)

// parseEnv overlays every ROOMIFY_* variable that is set and non-empty.
// Unparsable values are ignored.
func parseEnv(cfg *Config) {
	cfg.ServerURL = flagx.EnvOrDefault(EnvServerURL, cfg.ServerURL)
	cfg.ImageAPIURL = flagx.EnvOrDefault(EnvImageAPIURL, cfg.ImageAPIURL)
	cfg.StatePath = flagx.EnvOrDefault(EnvStatePath, cfg.StatePath)

	if v := os.Getenv(EnvRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}
