// Package config loads runtime configuration for the Roomify CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or --config.
//  3. ROOMIFY_* environment variables (see parseEnv).
//  4. Persistent command-line flags bound with (*Config).BindFlags.
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "15s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "image_api_url": "https://api.openai.com/v1",
//	  "state_path": "roomify.db",
//	  "request_timeout": "15s",
//	  "debug": false
//	}
package config
