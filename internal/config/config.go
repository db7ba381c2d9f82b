// Package config loads carbonsim settings from ~/.carbonsim/config.yaml,
// an optional project overlay, .env files and CARBONSIM_* variables.
//
// Precedence, lowest first: built-in defaults, global file, project
// overlay, environment, CLI flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/engine/cache"
	"github.com/ecoimpact/carbonsim/internal/logging"
	"github.com/ecoimpact/carbonsim/internal/projection"
)

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = constError("invalid configuration")
	// ErrUnknownKey is returned by Get and Set for keys outside Keys().
	ErrUnknownKey = constError("unknown configuration key")
)

const configFileName = "config.yaml"

// Config is the complete carbonsim configuration.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Data       DataConfig       `yaml:"data"`
	Projection ProjectionConfig `yaml:"projection"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`

	configPath string
}

// OutputConfig controls rendering defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig controls the zerolog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// DataConfig selects the reference dataset. An empty Path uses the embedded one.
type DataConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ProjectionConfig overrides projection heuristics. Nil fields keep the defaults.
type ProjectionConfig struct {
	MaxYears              *int     `yaml:"max_years,omitempty"`
	MinRevenueGrowth      *float64 `yaml:"min_revenue_growth,omitempty"`
	MaxRevenueMultiple    *float64 `yaml:"max_revenue_multiple,omitempty"`
	FallbackEffectiveRate *float64 `yaml:"fallback_effective_rate,omitempty"`
	MinRevenue            *float64 `yaml:"min_revenue,omitempty"`
	RiskEscalationPP      *float64 `yaml:"risk_escalation_pp,omitempty"`
}

// Options applies the overrides to projection.DefaultOptions.
func (p ProjectionConfig) Options() projection.Options {
	o := projection.DefaultOptions()
	if p.MaxYears != nil {
		o.MaxYears = *p.MaxYears
	}
	if p.MinRevenueGrowth != nil {
		o.MinRevenueGrowth = *p.MinRevenueGrowth
	}
	if p.MaxRevenueMultiple != nil {
		o.MaxRevenueMultiple = *p.MaxRevenueMultiple
	}
	if p.FallbackEffectiveRate != nil {
		o.FallbackEffectiveRate = *p.FallbackEffectiveRate
	}
	if p.MinRevenue != nil {
		o.MinRevenue = *p.MinRevenue
	}
	if p.RiskEscalationPP != nil {
		o.RiskEscalationPP = *p.RiskEscalationPP
	}
	return o
}

// CacheConfig controls the on-disk result cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory,omitempty"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output:  OutputConfig{DefaultFormat: string(engine.OutputTable)},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: cache.DefaultTTLSeconds,
			MaxSizeMB:  cache.DefaultCacheMaxSizeMB,
		},
	}
}

// New returns the effective configuration: defaults, then the global file,
// then environment overrides. A missing file is not an error; an unreadable
// one leaves the defaults in place.
func New() *Config {
	cfg := Default()
	dir, err := GetConfigDir()
	if err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
		_ = cfg.loadFile(cfg.configPath)
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg
}

// Load reads path on top of the defaults without consulting the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ConfigPath is where Save writes.
func (c *Config) ConfigPath() string { return c.configPath }

// SetConfigPath changes where Save writes.
func (c *Config) SetConfigPath(path string) { c.configPath = path }

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("no config path set")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// CacheDirectory returns the configured cache directory or <config dir>/cache.
func (c *Config) CacheDirectory() (string, error) {
	if c.Cache.Directory != "" {
		return c.Cache.Directory, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := engine.ParseOutputFormat(c.Output.DefaultFormat); err != nil {
		errs = append(errs, fmt.Errorf("output.default_format: %w", err))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil || c.Logging.Level == "" {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("logging.format: must be json or console, got %q", c.Logging.Format))
	}
	if err := c.Projection.Options().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("projection: %w", err))
	}
	if c.Cache.Enabled {
		if err := cache.ValidateTTL(c.Cache.TTLSeconds); err != nil {
			errs = append(errs, fmt.Errorf("cache.ttl_seconds: %w", err))
		}
	}
	if c.Cache.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("cache.max_size_mb: must not be negative, got %d", c.Cache.MaxSizeMB))
	}
	if c.Data.Path != "" {
		if _, err := os.Stat(c.Data.Path); err != nil {
			errs = append(errs, fmt.Errorf("data.path: %w", err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
