package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Database  DatabaseConfig  `yaml:"database"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Logging   LoggingConfig   `yaml:"logging"`
	Severity  SeverityConfig  `yaml:"severity"`
	Inference InferenceConfig `yaml:"inference"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SnapshotConfig locates the snapshot file read when no database is used
type SnapshotConfig struct {
	Path     string   `yaml:"path,omitempty"`
	Format   string   `yaml:"format,omitempty"` // yaml, json or sheet; empty = by file name
	Debounce Duration `yaml:"debounce,omitempty"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `yaml:"level"`          // debug, info, warn, error
	File  string `yaml:"file,omitempty"` // JSON log file; empty = stderr only
}

// SeverityConfig holds the severity color anchors as #rrggbb
type SeverityConfig struct {
	Unknown    string `yaml:"unknown,omitempty"`
	DataError  string `yaml:"data_error,omitempty"`
	Consistent string `yaml:"consistent,omitempty"`
	Minor      string `yaml:"minor,omitempty"`
	Severe     string `yaml:"severe,omitempty"`
}

// InferenceConfig selects the default variant and tunes variant presets
type InferenceConfig struct {
	DefaultVariant int `yaml:"default_variant"`

	// Variants overrides preset thresholds, keyed by preset name
	// (precision, balanced, coverage)
	Variants map[string]*ProfileOverride `yaml:"variants,omitempty"`
}

// ProfileOverride allows overriding variant preset thresholds
type ProfileOverride struct {
	OwnerRule          *string  `yaml:"owner_rule,omitempty"`
	MaxHops            *int     `yaml:"max_hops,omitempty"`
	MinSignal          *float64 `yaml:"min_signal,omitempty"`
	TraverseObserved   *bool    `yaml:"traverse_observed,omitempty"`
	SingleEdgeFallback *bool    `yaml:"single_edge_fallback,omitempty"`
	Confidence         *float64 `yaml:"confidence,omitempty"`
	FallbackConfidence *float64 `yaml:"fallback_confidence,omitempty"`
}

// CacheConfig sizes the in-process caches
type CacheConfig struct {
	GraphSize int `yaml:"graph_size"` // graphs kept per snapshot revision
}

// MetricsConfig holds metrics export settings
type MetricsConfig struct {
	Out string `yaml:"out,omitempty"` // Prometheus text file written on exit
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
