// Package config provides configuration loading and validation for the
// hawkkey CLI and for applications that prefer file-based client setup.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hawkkey/hawkkey-go/domain/key"
)

// Config is the root configuration structure.
type Config struct {
	APIKey  string            `yaml:"api_key"`
	BaseURL string            `yaml:"base_url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Logging LoggingConfig     `yaml:"logging"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads configuration from a YAML file. ${VAR} references in the
// file are expanded from the environment before parsing, and HAWKKEY_*
// variables override parsed values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment
// variables.
//
// Environment variables:
//
//	HAWKKEY_API_KEY    - API credential (required)
//	HAWKKEY_BASE_URL   - Service endpoint override
//	HAWKKEY_TIMEOUT    - Per-request timeout, e.g. "10s"
//	HAWKKEY_LOG_LEVEL  - Log level: debug, info, warn, error (default: info)
//	HAWKKEY_LOG_FORMAT - Log format: json or console (default: console)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if os.Getenv("HAWKKEY_API_KEY") != "" {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide a config file or set HAWKKEY_API_KEY")
}

// applyEnvOverrides applies HAWKKEY_* environment variables to the
// config. Environment variables always override file-based values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HAWKKEY_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("HAWKKEY_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HAWKKEY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("HAWKKEY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HAWKKEY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validate(cfg *Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if !key.ValidFormat(cfg.APIKey) {
		return fmt.Errorf("api_key must start with one of: %s", strings.Join(key.Prefixes, ", "))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	return nil
}
