package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type StorageBackend string

const (
	BackendSQLite StorageBackend = "sqlite"
	BackendFile   StorageBackend = "file"
)

type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Storage  StorageConfig  `toml:"storage"`
	Engine   EngineConfig   `toml:"engine"`
	Location LocationConfig `toml:"location"`
	Media    MediaConfig    `toml:"media"`
	Logging  LoggingConfig  `toml:"logging"`
}

type CatalogConfig struct {
	Dir string `toml:"dir"`
}

type StorageConfig struct {
	Backend StorageBackend `toml:"backend"`
	Path    string         `toml:"path"`
	Key     string         `toml:"key"`
}

type EngineConfig struct {
	ScanDelay        string `toml:"scan_delay"`
	ActivityCapacity int    `toml:"activity_capacity"`
	RecentActivity   int    `toml:"recent_activity"`
}

type LocationConfig struct {
	Enabled   bool    `toml:"enabled"`
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

type MediaConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Default(dbPath string) Config {
	return Config{
		Catalog: CatalogConfig{
			Dir: "catalogs/roux",
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    dbPath,
			Key:     "questrouxState",
		},
		Engine: EngineConfig{
			ScanDelay:        "1.5s",
			ActivityCapacity: 50,
			RecentActivity:   6,
		},
		Location: LocationConfig{
			Enabled:   true,
			Latitude:  29.9627,
			Longitude: -90.0725,
		},
		Media: MediaConfig{
			MaxBytes: 5 << 20,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Catalog.Dir) == "" {
		return errors.New("catalog.dir is required")
	}

	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	if c.Storage.Backend == BackendSQLite && strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required for the sqlite backend")
	}

	if _, err := c.ScanDelay(); err != nil {
		return err
	}
	if c.Engine.ActivityCapacity <= 0 {
		return errors.New("engine.activity_capacity must be > 0")
	}
	if c.Engine.RecentActivity <= 0 {
		return errors.New("engine.recent_activity must be > 0")
	}
	if c.Engine.RecentActivity > c.Engine.ActivityCapacity {
		return fmt.Errorf("engine.recent_activity (%d) exceeds engine.activity_capacity (%d)",
			c.Engine.RecentActivity, c.Engine.ActivityCapacity)
	}

	if c.Location.Enabled {
		if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
			return fmt.Errorf("location.latitude out of range: %v", c.Location.Latitude)
		}
		if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
			return fmt.Errorf("location.longitude out of range: %v", c.Location.Longitude)
		}
	}

	if c.Media.MaxBytes <= 0 {
		return errors.New("media.max_bytes must be > 0")
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

// ScanDelay parses engine.scan_delay.
func (c Config) ScanDelay() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.Engine.ScanDelay))
	if err != nil {
		return 0, fmt.Errorf("invalid engine.scan_delay: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("engine.scan_delay must be >= 0, got %s", d)
	}
	return d, nil
}

// ApplyEnv overrides paths from QUESTROUX_DB_PATH.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if p := strings.TrimSpace(getenv("QUESTROUX_DB_PATH")); p != "" {
		c.Storage.Path = p
	}
	return c
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
