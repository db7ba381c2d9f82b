package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// field binds one dotted key to its Config storage.
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

func intField(ptr func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("expected an integer: %w", err)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(ptr func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false: %w", err)
			}
			*ptr(c) = b
			return nil
		},
	}
}

// overrideIntField reads as the effective projection value and writes an override.
func overrideIntField(ptr func(*Config) **int, def func(*Config) int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(def(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("expected an integer: %w", err)
			}
			*ptr(c) = &n
			return nil
		},
	}
}

func overrideFloatField(ptr func(*Config) **float64, def func(*Config) float64) field {
	return field{
		get: func(c *Config) string { return strconv.FormatFloat(def(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("expected a number: %w", err)
			}
			*ptr(c) = &f
			return nil
		},
	}
}

//nolint:gochecknoglobals // Static key table.
var fields = map[string]field{
	"output.default_format": stringField(func(c *Config) *string { return &c.Output.DefaultFormat }),
	"logging.level":         stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":        stringField(func(c *Config) *string { return &c.Logging.Format }),
	"logging.file":          stringField(func(c *Config) *string { return &c.Logging.File }),
	"data.path":             stringField(func(c *Config) *string { return &c.Data.Path }),
	"projection.max_years": overrideIntField(
		func(c *Config) **int { return &c.Projection.MaxYears },
		func(c *Config) int { return c.Projection.Options().MaxYears }),
	"projection.min_revenue_growth": overrideFloatField(
		func(c *Config) **float64 { return &c.Projection.MinRevenueGrowth },
		func(c *Config) float64 { return c.Projection.Options().MinRevenueGrowth }),
	"projection.max_revenue_multiple": overrideFloatField(
		func(c *Config) **float64 { return &c.Projection.MaxRevenueMultiple },
		func(c *Config) float64 { return c.Projection.Options().MaxRevenueMultiple }),
	"projection.fallback_effective_rate": overrideFloatField(
		func(c *Config) **float64 { return &c.Projection.FallbackEffectiveRate },
		func(c *Config) float64 { return c.Projection.Options().FallbackEffectiveRate }),
	"projection.min_revenue": overrideFloatField(
		func(c *Config) **float64 { return &c.Projection.MinRevenue },
		func(c *Config) float64 { return c.Projection.Options().MinRevenue }),
	"projection.risk_escalation_pp": overrideFloatField(
		func(c *Config) **float64 { return &c.Projection.RiskEscalationPP },
		func(c *Config) float64 { return c.Projection.Options().RiskEscalationPP }),
	"cache.enabled":     boolField(func(c *Config) *bool { return &c.Cache.Enabled }),
	"cache.directory":   stringField(func(c *Config) *string { return &c.Cache.Directory }),
	"cache.ttl_seconds": intField(func(c *Config) *int { return &c.Cache.TTLSeconds }),
	"cache.max_size_mb": intField(func(c *Config) *int { return &c.Cache.MaxSizeMB }),
	"metrics.textfile":  stringField(func(c *Config) *string { return &c.Metrics.Textfile }),
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value stored under a dotted key such as "cache.ttl_seconds".
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set parses value into the field named by key. It does not validate the result.
func (c *Config) Set(key, value string) error {
	f, ok := fields[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// List returns every key with its current value.
func (c *Config) List() [][2]string {
	out := make([][2]string, 0, len(fields))
	for _, k := range Keys() {
		out = append(out, [2]string{k, fields[k].get(c)})
	}
	return out
}
