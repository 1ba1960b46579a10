package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tinywiki.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
base_url: https://wiki.example.com/view
session_ttl: 30m
segment_words: 40
cors_origins:
  - https://a.example.com
`), 0o644))

	t.Setenv("TINYWIKI_PORT", "9100")
	t.Setenv("TINYWIKI_MAX_SESSIONS", "5")
	t.Setenv("TINYWIKI_CORS_ORIGINS", "https://b.example.com, https://c.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "https://wiki.example.com/view", cfg.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 40, cfg.SegmentWords)
	assert.Equal(t, 5, cfg.MaxSessions)
	assert.Equal(t, []string{"https://b.example.com", "https://c.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 8192, cfg.ShareURLLimit)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tinywiki.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.BaseURL = "/view" }},
		{"no port", func(c *Config) { c.Port = "" }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"zero sessions", func(c *Config) { c.MaxSessions = 0 }},
		{"negative limit", func(c *Config) { c.ShareURLLimit = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero segment", func(c *Config) { c.SegmentWords = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "secret"
	data, err := cfg.YAML()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
