// Package config provides CLI configuration management for the claimsift
// command-line tool. It supports loading configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatCSV is CSV output for spreadsheet tooling.
	OutputFormatCSV OutputFormat = "csv"
)

// Default configuration values.
const (
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".claimsift"
	DefaultConfigFile   = "config.yaml"
	DefaultConcurrency  = 4
)

// RedisConfig holds Redis settings for run event publishing. Publishing is
// disabled unless Enabled is set.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// DatabaseConfig holds Postgres settings for the reference-truth repository.
// The repository is used only when Enabled is set; file-based runs need no
// database at all.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

// CLIConfig is the claimsift CLI configuration.
type CLIConfig struct {
	// SynonymsPath is the header synonym table YAML.
	SynonymsPath string `yaml:"synonyms_path,omitempty"`

	// ScoringPath is the scoring config YAML (gold tokens, negative
	// triggers, bronze threshold).
	ScoringPath string `yaml:"scoring_path,omitempty"`

	// OverridesPath is the entity override CSV.
	OverridesPath string `yaml:"overrides_path,omitempty"`

	// ReferencePath is the reference truth CSV for file-based runs.
	ReferencePath string `yaml:"reference_path,omitempty"`

	// Concurrency is the batch worker count.
	Concurrency int `yaml:"concurrency,omitempty"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Database holds the optional reference-truth Postgres settings.
	Database DatabaseConfig `yaml:"database,omitempty"`

	// Redis holds the optional run-event publishing settings.
	Redis RedisConfig `yaml:"redis,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Concurrency:  DefaultConcurrency,
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $CLAIMSIFT_CONFIG_DIR if set, otherwise ~/.claimsift
func ConfigDir() (string, error) {
	if dir := os.Getenv("CLAIMSIFT_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.claimsift/config.yaml or $CLAIMSIFT_CONFIG_DIR/config.yaml)
// 3. Environment variables (CLAIMSIFT_*)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("CLAIMSIFT_SYNONYMS_PATH"); v != "" {
		cfg.SynonymsPath = v
	}
	if v := os.Getenv("CLAIMSIFT_SCORING_PATH"); v != "" {
		cfg.ScoringPath = v
	}
	if v := os.Getenv("CLAIMSIFT_OVERRIDES_PATH"); v != "" {
		cfg.OverridesPath = v
	}
	if v := os.Getenv("CLAIMSIFT_REFERENCE_PATH"); v != "" {
		cfg.ReferencePath = v
	}
	if v := os.Getenv("CLAIMSIFT_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("CLAIMSIFT_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("CLAIMSIFT_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("CLAIMSIFT_REDIS_HOST"); v != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Host = v
	}
	if v := os.Getenv("CLAIMSIFT_REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = n
		}
	}
	if v := os.Getenv("CLAIMSIFT_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
}

// Validate checks the configuration for contradictions.
func (c *CLIConfig) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or csv)", c.OutputFormat)
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required when redis is enabled")
	}
	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("database.host is required when database is enabled")
	}
	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatCSV:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
