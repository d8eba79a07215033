package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application-level configuration. Every field has a working
// default so a missing file is not an error.
type Config struct {
	DBPath           string `yaml:"db_path"`
	PendingStorePath string `yaml:"pending_store_path"`
	LogPath          string `yaml:"log_path"`
	Timezone         string `yaml:"timezone"`
	CacheTTLSeconds  int    `yaml:"cache_ttl_seconds"`
	DebounceMillis   int    `yaml:"debounce_ms"`
	HistoryDays      int    `yaml:"history_days"`
}

func Default() Config {
	dir := defaultDataDir()
	return Config{
		DBPath:           filepath.Join(dir, "habitd.db"),
		PendingStorePath: filepath.Join(dir, "pending.json"),
		LogPath:          filepath.Join(dir, "habitd.log"),
		Timezone:         "Local",
		CacheTTLSeconds:  3,
		DebounceMillis:   500,
		HistoryDays:      60,
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", trimmed, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", trimmed, err)
	}
	if cfg.CacheTTLSeconds <= 0 {
		cfg.CacheTTLSeconds = Default().CacheTTLSeconds
	}
	if cfg.DebounceMillis <= 0 {
		cfg.DebounceMillis = Default().DebounceMillis
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = Default().HistoryDays
	}
	return cfg, nil
}

// Location resolves the configured timezone, with "Local" and empty meaning
// the system zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", name, err)
	}
	return loc, nil
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

func defaultDataDir() string {
	if base, err := os.UserHomeDir(); err == nil {
		return filepath.Join(base, ".habitd")
	}
	return "."
}
