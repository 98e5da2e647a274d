package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the Roomify CLI.
//
// Fields:
//   - ServerURL: base URL of the Roomify API server.
//   - ImageAPIURL: base URL of the image-generation API.
//   - StatePath: sqlite file holding on-device state.
//   - RequestTimeout: per-request timeout for API server calls.
//   - Debug: enables debug logging on stderr.
type Config struct {
	ServerURL      string
	ImageAPIURL    string
	StatePath      string
	RequestTimeout time.Duration
	Debug          bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.ImageAPIURL = "https://api.openai.com/v1"
	c.StatePath = "roomify.db"
	c.RequestTimeout = 15 * time.Second
	c.Debug = false
}

// BindFlags registers the persistent command-line flags. Flag values win over
// every other source because cobra parses them last.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ServerURL, "server", "s", c.ServerURL, "Roomify API server URL")
	fs.StringVar(&c.ImageAPIURL, "image-api", c.ImageAPIURL, "image API base URL")
	fs.StringVar(&c.StatePath, "state", c.StatePath, "path to the on-device state database")
	fs.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "API request timeout")
	fs.BoolVarP(&c.Debug, "debug", "v", c.Debug, "enable debug logging")
	// parsed ahead of cobra by parseJson; registered so cobra accepts it
	fs.StringP("config", "c", "", "path to a JSON config file")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and the environment. Call BindFlags before executing the
// command tree to let flags override the result.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	return cfg
}
