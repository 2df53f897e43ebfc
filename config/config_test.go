// Package config provides CLI configuration management for the claimsift
// command-line tool.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies default configuration values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %v, want %v", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.OutputFormat != DefaultOutputFormat {
		t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, DefaultOutputFormat)
	}
	if cfg.Debug {
		t.Error("Debug should be false by default")
	}
	if cfg.Redis.Enabled || cfg.Database.Enabled {
		t.Error("external services should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

// TestOutputFormat_IsValid verifies output format validation.
func TestOutputFormat_IsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   bool
	}{
		{OutputFormatText, true},
		{OutputFormatJSON, true},
		{OutputFormatCSV, true},
		{OutputFormat("yaml"), false},
		{OutputFormat(""), false},
	}

	for _, tt := range tests {
		if got := tt.format.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

// TestConfigDir verifies the directory override.
func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLAIMSIFT_CONFIG_DIR", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir = %v, want %v", got, dir)
	}
}

// TestLoadConfigFromFile verifies YAML loading and env overlay.
func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLAIMSIFT_CONFIG_DIR", dir)

	content := `synonyms_path: /etc/claimsift/synonyms.yaml
scoring_path: /etc/claimsift/scoring.yaml
concurrency: 8
output_format: json
redis:
  enabled: true
  host: redis.internal
  port: 6379
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CLAIMSIFT_SCORING_PATH", "/override/scoring.yaml")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.SynonymsPath != "/etc/claimsift/synonyms.yaml" {
		t.Errorf("SynonymsPath = %v", cfg.SynonymsPath)
	}
	if cfg.ScoringPath != "/override/scoring.yaml" {
		t.Errorf("env must override file, ScoringPath = %v", cfg.ScoringPath)
	}
	if cfg.Concurrency != 8 || cfg.OutputFormat != OutputFormatJSON {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Host != "redis.internal" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

// TestLoadConfigMissingFile verifies defaults apply with no config file.
func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("CLAIMSIFT_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %v, want default", cfg.Concurrency)
	}
}

// TestValidate verifies configuration contradiction checks.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
	}{
		{"zero concurrency", func(c *CLIConfig) { c.Concurrency = 0 }},
		{"bad output format", func(c *CLIConfig) { c.OutputFormat = "xml" }},
		{"redis without host", func(c *CLIConfig) { c.Redis.Enabled = true }},
		{"database without host", func(c *CLIConfig) { c.Database.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestSaveConfigRoundTrip verifies save and reload.
func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("CLAIMSIFT_CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.SynonymsPath = "/tmp/synonyms.yaml"
	cfg.Concurrency = 2

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.SynonymsPath != cfg.SynonymsPath || loaded.Concurrency != 2 {
		t.Errorf("loaded = %+v", loaded)
	}
}

// TestExpandPath verifies home expansion.
func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got, err := ExpandPath("~/data/ref.csv")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "data/ref.csv") {
		t.Errorf("ExpandPath = %v", got)
	}

	got, err = ExpandPath("/abs/path.csv")
	if err != nil || got != "/abs/path.csv" {
		t.Errorf("ExpandPath = %v, %v", got, err)
	}
}
