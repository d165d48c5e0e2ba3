// Package config provides configuration management for ductnet.
//
// The config file tunes how the engine runs, never what the network looks
// like: network records live in the snapshot file or the database.
//
// Config file locations (priority order):
//  1. $DUCTNET_CONFIG
//  2. ./ductnet.yaml
//  3. $XDG_CONFIG_HOME/ductnet/config.yaml
//  4. ~/.config/ductnet/config.yaml
//  5. /etc/ductnet/config.yaml
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		Database:  DatabaseConfig{Path: "./ductnet.db"},
		Snapshot:  SnapshotConfig{Debounce: Duration(500 * time.Millisecond)},
		Logging:   LoggingConfig{Level: "info"},
		Inference: InferenceConfig{DefaultVariant: 2},
		Cache:     CacheConfig{GraphSize: 8},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Database.Path == "" {
		c.Database.Path = "./ductnet.db"
	}
	if c.Snapshot.Debounce == 0 {
		c.Snapshot.Debounce = Duration(500 * time.Millisecond)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Inference.DefaultVariant == 0 {
		c.Inference.DefaultVariant = 2
	}
	if c.Cache.GraphSize <= 0 {
		c.Cache.GraphSize = 8
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !c.DefaultVariant().Valid() || c.Inference.DefaultVariant != int(c.DefaultVariant()) {
		return fmt.Errorf("inference.default_variant: %d outside 1..3", c.Inference.DefaultVariant)
	}
	if f := strings.ToLower(c.Snapshot.Format); f != "" && f != "yaml" && f != "json" && f != "sheet" {
		return fmt.Errorf("snapshot.format: %q is not yaml, json or sheet", c.Snapshot.Format)
	}
	if _, err := c.EffectiveProfiles(); err != nil {
		return err
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the configured slog level
func (c *Config) LogLevel() slog.Level {
	level, err := ParseLevel(c.Logging.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel converts a level name to slog.Level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s, Snapshot: %s\n", c.Database.Path, orNone(c.Snapshot.Path))
	summary += fmt.Sprintf("Default variant: %d (%s), Log level: %s\n",
		int(c.DefaultVariant()), c.DefaultVariant(), c.Logging.Level)

	profiles, err := c.EffectiveProfiles()
	if err != nil {
		return summary + fmt.Sprintf("Profiles: %v", err)
	}
	summary += "Profiles:"
	for i, p := range profiles {
		summary += fmt.Sprintf(" [%d %s hops=%d signal=%.2f]", i+1, p.OwnerRule, p.MaxHops, p.MinSignal)
	}
	return summary
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
