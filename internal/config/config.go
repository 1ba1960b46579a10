// Package config loads tinywiki settings layered from a YAML file and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no other path is given.
const DefaultPath = "tinywiki.yml"

// EnvPrefix prefixes every environment override, e.g. TINYWIKI_PORT.
const EnvPrefix = "TINYWIKI_"

type Config struct {
	Port string `koanf:"port" yaml:"port"`

	// Auth: bearer token required on /api routes when set
	APIKey string `koanf:"api_key" yaml:"api_key,omitempty"`

	// Share links
	BaseURL       string `koanf:"base_url" yaml:"base_url"`
	ShareURLLimit int    `koanf:"share_url_limit" yaml:"share_url_limit"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Session state
	SessionTTL      time.Duration `koanf:"session_ttl" yaml:"session_ttl"`
	MaxSessions     int           `koanf:"max_sessions" yaml:"max_sessions"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" yaml:"cleanup_interval"`

	// Request limits
	RateLimit   float64  `koanf:"rate_limit" yaml:"rate_limit"`
	RateBurst   int      `koanf:"rate_burst" yaml:"rate_burst"`
	CORSOrigins []string `koanf:"cors_origins" yaml:"cors_origins"`

	// Read aloud
	SpeechCommand string `koanf:"speech_command" yaml:"speech_command,omitempty"`
	SegmentWords  int    `koanf:"segment_words" yaml:"segment_words"`

	// Batch export
	ExportWorkers int `koanf:"export_workers" yaml:"export_workers"`

	LogLevel string `koanf:"log_level" yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:            "8090",
		BaseURL:         "http://localhost:8090/view",
		ShareURLLimit:   8192,
		MaxUploadBytes:  10 << 20, // 10MB
		SessionTTL:      1 * time.Hour,
		MaxSessions:     1000,
		CleanupInterval: 5 * time.Minute,
		RateLimit:       20,
		RateBurst:       40,
		CORSOrigins:     []string{"*"},
		SegmentWords:    60,
		ExportWorkers:   4,
		LogLevel:        "info",
	}
}

// Load starts from Default, overlays the YAML file at path if it exists,
// then TINYWIKI_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// TINYWIKI_SESSION_TTL -> session_ttl; list values are comma separated.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "cors_origins" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists from file or env replace the default rather than merging into it.
	if k.Exists("cors_origins") {
		cfg.CORSOrigins = nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute URL", c.BaseURL)
	}
	if c.ShareURLLimit < 0 {
		return fmt.Errorf("share_url_limit must be non-negative")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate_limit and rate_burst must be non-negative")
	}
	if c.SegmentWords <= 0 {
		return fmt.Errorf("segment_words must be positive")
	}
	if c.ExportWorkers <= 0 {
		return fmt.Errorf("export_workers must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// YAML renders the configuration in the file format Load reads.
func (c *Config) YAML() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
