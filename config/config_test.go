package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hawkkey/hawkkey-go/config"
)

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawkkey.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
api_key: "hk_live_abcdefghijklmnop"
base_url: "http://localhost:3000"
timeout: 15s

headers:
  x-team: "platform"

logging:
  level: "debug"
  format: "json"
`

	cfg := writeAndLoad(t, content)

	if cfg.APIKey != "hk_live_abcdefghijklmnop" {
		t.Errorf("APIKey = %s", cfg.APIKey)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.Headers["x-team"] != "platform" {
		t.Errorf("Headers = %v", cfg.Headers)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
api_key: "hk_test_abcdefghijklmnop"
`

	cfg := writeAndLoad(t, content)

	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("default Logging.Format = %s, want console", cfg.Logging.Format)
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL = %s, want empty (client applies its own default)", cfg.BaseURL)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_HAWKKEY_KEY", "hk_live_abcdefghijklmnop")

	content := `
api_key: "${TEST_HAWKKEY_KEY}"
`

	cfg := writeAndLoad(t, content)

	if cfg.APIKey != "hk_live_abcdefghijklmnop" {
		t.Errorf("APIKey = %s, want expanded env value", cfg.APIKey)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HAWKKEY_API_KEY", "hk_test_fromenvironment")
	t.Setenv("HAWKKEY_TIMEOUT", "3s")

	content := `
api_key: "hk_live_abcdefghijklmnop"
timeout: 30s
`

	cfg := writeAndLoad(t, content)

	if cfg.APIKey != "hk_test_fromenvironment" {
		t.Errorf("APIKey = %s, env should override file", cfg.APIKey)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, env should override file", cfg.Timeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing api_key", `base_url: "http://localhost:3000"`},
		{"bad prefix", `api_key: "sk_live_abcdefghijklmnop"`},
		{"bad log level", "api_key: \"hk_live_abcdefghijklmnop\"\nlogging:\n  level: \"verbose\""},
		{"bad log format", "api_key: \"hk_live_abcdefghijklmnop\"\nlogging:\n  format: \"xml\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hawkkey.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := config.Load(path); err == nil {
				t.Error("Load succeeded, want validation error")
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HAWKKEY_API_KEY", "hk_live_abcdefghijklmnop")
	t.Setenv("HAWKKEY_LOG_FORMAT", "json")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.APIKey != "hk_live_abcdefghijklmnop" {
		t.Errorf("APIKey = %s", cfg.APIKey)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %s", cfg.Logging.Format)
	}
}

func TestLoadWithFallback(t *testing.T) {
	t.Setenv("HAWKKEY_API_KEY", "hk_live_abcdefghijklmnop")

	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback failed: %v", err)
	}
	if cfg.APIKey != "hk_live_abcdefghijklmnop" {
		t.Errorf("APIKey = %s", cfg.APIKey)
	}
}
