// Package config loads the bridge configuration from .crb/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete bridge configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// Workspace is the path to the workspace file listing codebases to open.
	Workspace string `json:"workspace" mapstructure:"workspace"`

	// Manifest is the path to the capability manifest.
	Manifest string `json:"manifest" mapstructure:"manifest"`

	Executor    ExecutorConfig    `json:"executor" mapstructure:"executor"`
	Diagnostics DiagnosticsConfig `json:"diagnostics" mapstructure:"diagnostics"`
	Daemon      DaemonConfig      `json:"daemon" mapstructure:"daemon"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
}

// ExecutorConfig bounds mutating operations.
type ExecutorConfig struct {
	// TimeoutSeconds caps each writer-context operation.
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// DiagnosticsConfig tunes diagnostics aggregation.
type DiagnosticsConfig struct {
	// DefaultLimit caps a diagnostics reply when the request gives no limit.
	DefaultLimit int `json:"defaultLimit" mapstructure:"defaultLimit"`
}

// DaemonConfig configures the status HTTP server.
type DaemonConfig struct {
	Bind string `json:"bind" mapstructure:"bind"`
	Port int    `json:"port" mapstructure:"port"`

	// TokenHash is the bcrypt hash of the daemon's bearer token. The raw
	// token is never stored.
	TokenHash string `json:"tokenHash" mapstructure:"tokenHash"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		Workspace: "crb.toml",
		Manifest:  ".crb/capabilities.yaml",
		Executor: ExecutorConfig{
			TimeoutSeconds: 30,
		},
		Diagnostics: DiagnosticsConfig{
			DefaultLimit: 100,
		},
		Daemon: DaemonConfig{
			Bind: "127.0.0.1",
			Port: 7643,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.crb/config.json, falling back to
// defaults when the file does not exist.
func Load(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("workspace", defaults.Workspace)
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("executor.timeoutSeconds", defaults.Executor.TimeoutSeconds)
	v.SetDefault("diagnostics.defaultLimit", defaults.Diagnostics.DefaultLimit)
	v.SetDefault("daemon.bind", defaults.Daemon.Bind)
	v.SetDefault("daemon.port", defaults.Daemon.Port)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".crb"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.crb/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".crb")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Workspace == "" {
		return fmt.Errorf("config: workspace path must not be empty")
	}
	if c.Executor.TimeoutSeconds < 1 {
		return fmt.Errorf("config: executor.timeoutSeconds must be at least 1, got %d", c.Executor.TimeoutSeconds)
	}
	if c.Diagnostics.DefaultLimit < 1 {
		return fmt.Errorf("config: diagnostics.defaultLimit must be at least 1, got %d", c.Diagnostics.DefaultLimit)
	}
	if c.Daemon.Port < 0 || c.Daemon.Port > 65535 {
		return fmt.Errorf("config: daemon.port %d out of range", c.Daemon.Port)
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return fmt.Errorf("config: unknown logging.format %q", c.Logging.Format)
	}
	return nil
}
