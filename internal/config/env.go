package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ecoimpact/carbonsim/internal/engine/cache"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvHome           = "CARBONSIM_HOME"
	EnvProjectDir     = "CARBONSIM_PROJECT_DIR"
	EnvOutputFormat   = "CARBONSIM_OUTPUT_FORMAT"
	EnvLogLevel       = "CARBONSIM_LOG_LEVEL"
	EnvLogFormat      = "CARBONSIM_LOG_FORMAT"
	EnvLogFile        = "CARBONSIM_LOG_FILE"
	EnvDataPath       = "CARBONSIM_DATA_PATH"
	EnvMaxYears       = "CARBONSIM_MAX_YEARS"
	EnvCacheEnabled   = "CARBONSIM_CACHE_ENABLED"
	EnvCacheDir       = "CARBONSIM_CACHE_DIR"
	EnvCacheTTL       = "CARBONSIM_CACHE_TTL"
	EnvCacheMaxSizeMB = "CARBONSIM_CACHE_MAX_SIZE_MB"
	EnvMetricsFile    = "CARBONSIM_METRICS_TEXTFILE"
)

//nolint:gochecknoglobals // Static env-to-key table.
var envKeys = []struct {
	env string
	key string
}{
	{EnvOutputFormat, "output.default_format"},
	{EnvLogLevel, "logging.level"},
	{EnvLogFormat, "logging.format"},
	{EnvLogFile, "logging.file"},
	{EnvDataPath, "data.path"},
	{EnvMaxYears, "projection.max_years"},
	{EnvCacheEnabled, "cache.enabled"},
	{EnvCacheDir, "cache.directory"},
	{EnvCacheMaxSizeMB, "cache.max_size_mb"},
	{EnvMetricsFile, "metrics.textfile"},
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped; with no arguments ".env" in the working directory is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays CARBONSIM_* variables. Malformed values are ignored and
// reported in the returned slice so the caller can warn about them.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) []error {
	var errs []error
	for _, e := range envKeys {
		v, ok := lookup(e.env)
		if !ok || v == "" {
			continue
		}
		if err := c.Set(e.key, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.env, err))
		}
	}
	// CARBONSIM_CACHE_TTL also accepts durations such as "6h".
	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		seconds, err := cache.ParseTTL(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvCacheTTL, err))
		} else {
			c.Cache.TTLSeconds = seconds
		}
	}
	return errs
}
