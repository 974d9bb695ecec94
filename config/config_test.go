package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/questroux.db")
	if cfg.Storage.Path != "/tmp/questroux.db" {
		t.Fatalf("unexpected db path %q", cfg.Storage.Path)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	d, err := cfg.ScanDelay()
	if err != nil || d != 1500*time.Millisecond {
		t.Fatalf("scan delay = %v, %v", d, err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/questroux.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Path != defaults.Storage.Path {
		t.Fatalf("expected default db path, got %q", cfg.Storage.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[storage]
backend = "file"
path = "/custom/progress.json"

[engine]
scan_delay = "0s"
activity_capacity = 20

[location]
enabled = false

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/questroux.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Path != "/custom/progress.json" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Engine.ActivityCapacity != 20 || cfg.Engine.RecentActivity != 6 {
		t.Fatalf("unexpected engine %+v", cfg.Engine)
	}
	if cfg.Location.Enabled {
		t.Fatal("expected location disabled")
	}
	if cfg.Catalog.Dir != "catalogs/roux" {
		t.Fatalf("catalog dir should keep default, got %q", cfg.Catalog.Dir)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"path", func(c *Config) { c.Storage.Path = " " }},
		{"scan delay", func(c *Config) { c.Engine.ScanDelay = "soon" }},
		{"negative delay", func(c *Config) { c.Engine.ScanDelay = "-1s" }},
		{"capacity", func(c *Config) { c.Engine.ActivityCapacity = 0 }},
		{"recent over capacity", func(c *Config) { c.Engine.RecentActivity = 60 }},
		{"latitude", func(c *Config) { c.Location.Latitude = 100 }},
		{"max bytes", func(c *Config) { c.Media.MaxBytes = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"catalog", func(c *Config) { c.Catalog.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/tmp/questroux.db")
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[storage\npath="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, Default("/tmp/q.db")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default("/tmp/q.db").ApplyEnv(func(k string) string {
		if k == "QUESTROUX_DB_PATH" {
			return "/env/q.db"
		}
		return ""
	})
	if cfg.Storage.Path != "/env/q.db" {
		t.Fatalf("path = %q", cfg.Storage.Path)
	}
}
