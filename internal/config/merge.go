package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML section names used for shallow merge.
const (
	keyOutput     = "output"
	keyLogging    = "logging"
	keyData       = "data"
	keyProjection = "projection"
	keyCache      = "cache"
	keyMetrics    = "metrics"
)

// knownTopLevelKeys lists the sections an overlay may replace.
// Anything else in the overlay is ignored.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyOutput:     true,
	keyLogging:    true,
	keyData:       true,
	keyProjection: true,
	keyCache:      true,
	keyMetrics:    true,
}

// ShallowMergeYAML loads a YAML file and replaces each top-level section of
// target that the overlay names. Sections absent from the overlay are kept.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// unmarshalSection decodes node into a fresh value so the section is
// replaced rather than merged field by field.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyOutput:
		var v OutputConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Output = v
	case keyLogging:
		var v LoggingConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyData:
		var v DataConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Data = v
	case keyProjection:
		var v ProjectionConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Projection = v
	case keyCache:
		var v CacheConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Cache = v
	case keyMetrics:
		var v MetricsConfig
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Metrics = v
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
