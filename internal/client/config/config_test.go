package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, "https://api.openai.com/v1", c.ImageAPIURL)
	assert.Equal(t, "roomify.db", c.StatePath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.False(t, c.Debug)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"roomify"}
	for _, k := range []string{EnvServerURL, EnvImageAPIURL, EnvStatePath, EnvRequestTimeout, EnvDebug} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoadConfig_EnvOverridesJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"server_url": "http://json:1",
		"state_path": "json.db",
	})
	os.Args = []string{"roomify", "-c", path}
	t.Setenv(EnvServerURL, "http://env:2")
	t.Setenv(EnvStatePath, "")
	t.Setenv(EnvImageAPIURL, "")
	t.Setenv(EnvRequestTimeout, "")
	t.Setenv(EnvDebug, "")

	cfg := LoadConfig()

	assert.Equal(t, "http://env:2", cfg.ServerURL)
	assert.Equal(t, "json.db", cfg.StatePath)
}

func TestParseEnv(t *testing.T) {
	t.Setenv(EnvServerURL, "http://api.example")
	t.Setenv(EnvImageAPIURL, "http://img.example/v1")
	t.Setenv(EnvStatePath, "/tmp/state.db")
	t.Setenv(EnvRequestTimeout, "3s")
	t.Setenv(EnvDebug, "true")

	cfg := defaults()
	parseEnv(cfg)

	want := &Config{
		ServerURL:      "http://api.example",
		ImageAPIURL:    "http://img.example/v1",
		StatePath:      "/tmp/state.db",
		RequestTimeout: 3 * time.Second,
		Debug:          true,
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvImageAPIURL, "")
	t.Setenv(EnvStatePath, "")
	t.Setenv(EnvRequestTimeout, "soon")
	t.Setenv(EnvDebug, "maybe")

	cfg := defaults()
	parseEnv(cfg)

	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestBindFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "overrides",
			args: []string{"-s", "http://flag:9", "--state", "f.db", "--timeout", "2s", "-v"},
			expected: &Config{
				ServerURL:      "http://flag:9",
				ImageAPIURL:    "https://api.openai.com/v1",
				StatePath:      "f.db",
				RequestTimeout: 2 * time.Second,
				Debug:          true,
			},
		},
		{name: "config flag accepted", args: []string{"-c", "x.json"}, expected: defaults()},
		{name: "bad duration", args: []string{"--timeout", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			cfg.BindFlags(fs)

			err := fs.Parse(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
