package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/scheduler"
)

// Settings holds client configuration from dx.yaml.
type Settings struct {
	Describe DescribeSettings `yaml:"describe"`
	History  HistorySettings  `yaml:"history"`
}

// DescribeSettings tunes the describe pipeline.
type DescribeSettings struct {
	// Workers is the global concurrency limit.
	Workers int `yaml:"workers"`
	// ByClass caps concurrency per object class.
	ByClass map[string]int `yaml:"by_class"`
	// Timeout bounds each gateway call.
	Timeout time.Duration `yaml:"timeout"`
	// MaxAttempts bounds fetches per identifier, the first included.
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	// RequiredFields extends the per-class required-field contract.
	RequiredFields map[string][]string `yaml:"required_fields"`
}

// HistorySettings controls the local describe history.
type HistorySettings struct {
	Enabled bool `yaml:"enabled"`
	// Path of the sqlite database. Relative paths are resolved against the
	// configuration directory.
	Path string `yaml:"path"`
}

// DefaultSettings returns a sensible default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Describe: DescribeSettings{
			Workers:        4,
			ByClass:        map[string]int{},
			Timeout:        30 * time.Second,
			MaxAttempts:    3,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     8 * time.Second,
			RequiredFields: map[string][]string{},
		},
		History: HistorySettings{
			Enabled: false,
			Path:    "history.db",
		},
	}
}

// LoadSettings loads settings from a YAML file. A missing file yields the
// defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveSettings writes settings to a YAML file, creating parent directories
// if needed.
func SaveSettings(path string, cfg *Settings) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Settings) Validate() error {
	d := c.Describe
	if d.Workers < 1 {
		return fmt.Errorf("describe.workers must be at least 1")
	}
	for class, limit := range d.ByClass {
		if _, ok := ident.ClassFromPrefix(class); !ok {
			return fmt.Errorf("describe.by_class: unknown class %q", class)
		}
		if limit < 1 {
			return fmt.Errorf("describe.by_class.%s must be at least 1", class)
		}
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("describe.timeout must be positive")
	}
	if d.MaxAttempts < 1 {
		return fmt.Errorf("describe.max_attempts must be at least 1")
	}
	if d.InitialBackoff < 0 || d.MaxBackoff < d.InitialBackoff {
		return fmt.Errorf("describe backoff must satisfy 0 <= initial_backoff <= max_backoff")
	}
	for class := range d.RequiredFields {
		if _, ok := ident.ClassFromPrefix(class); !ok {
			return fmt.Errorf("describe.required_fields: unknown class %q", class)
		}
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}

// Scheduler returns the worker pool configuration.
func (c *Settings) Scheduler() *scheduler.Config {
	byClass := make(map[string]int, len(c.Describe.ByClass))
	for k, v := range c.Describe.ByClass {
		byClass[k] = v
	}
	return &scheduler.Config{Workers: c.Describe.Workers, ByClass: byClass}
}

// RequiredFields returns the required-field extensions keyed by class.
func (c *Settings) RequiredFields() map[ident.ObjectClass][]string {
	out := make(map[ident.ObjectClass][]string, len(c.Describe.RequiredFields))
	for name, fields := range c.Describe.RequiredFields {
		if class, ok := ident.ClassFromPrefix(name); ok {
			out[class] = append([]string(nil), fields...)
		}
	}
	return out
}

// HistoryPath resolves the history database path against dir.
func (c *Settings) HistoryPath(dir string) string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(dir, c.History.Path)
}
