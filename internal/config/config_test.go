package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Executor.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", cfg.Executor.TimeoutSeconds)
	}
	if cfg.Diagnostics.DefaultLimit != 100 {
		t.Errorf("DefaultLimit = %d, want 100", cfg.Diagnostics.DefaultLimit)
	}
	if cfg.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q", cfg.Daemon.Bind)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".crb"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"executor": {"timeoutSeconds": 5}, "daemon": {"port": 9000}}`
	if err := os.WriteFile(filepath.Join(root, ".crb", "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Executor.TimeoutSeconds != 5 {
		t.Errorf("TimeoutSeconds = %d, want 5", cfg.Executor.TimeoutSeconds)
	}
	if cfg.Daemon.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Daemon.Port)
	}
	// Untouched keys keep their defaults.
	if cfg.Diagnostics.DefaultLimit != 100 {
		t.Errorf("DefaultLimit = %d, want 100", cfg.Diagnostics.DefaultLimit)
	}
	if cfg.Workspace != "crb.toml" {
		t.Errorf("Workspace = %q", cfg.Workspace)
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".crb"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"executor": {"timeoutSeconds": 0}}`
	if err := os.WriteFile(filepath.Join(root, ".crb", "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Error("Load() = nil error, want validation failure")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Daemon.Port = 8123
	cfg.Logging.Format = "json"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Daemon.Port != 8123 || got.Logging.Format != "json" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty workspace", func(c *Config) { c.Workspace = "" }, false},
		{"zero timeout", func(c *Config) { c.Executor.TimeoutSeconds = 0 }, false},
		{"zero limit", func(c *Config) { c.Diagnostics.DefaultLimit = 0 }, false},
		{"bad port", func(c *Config) { c.Daemon.Port = 70000 }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, false},
		{"json format", func(c *Config) { c.Logging.Format = "json" }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != c.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, c.ok)
			}
		})
	}
}
