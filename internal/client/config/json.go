package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/roomify-app/roomify/internal/flagx"
	"github.com/roomify-app/roomify/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "15s" or as integer nanoseconds. After parsing, values are
// copied into the runtime Config.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	ImageAPIURL    string         `json:"image_api_url"`
	StatePath      string         `json:"state_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	Debug          *bool          `json:"debug"`
}

// parseJson overlays Config with values loaded from a JSON file named by -c
// or --config. Only fields present in the file override. It panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.ImageAPIURL != "" {
		cfg.ImageAPIURL = jc.ImageAPIURL
	}
	if jc.StatePath != "" {
		cfg.StatePath = jc.StatePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
}
