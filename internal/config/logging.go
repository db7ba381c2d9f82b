package config

import "github.com/ecoimpact/carbonsim/internal/logging"

// ToLoggingConfig bridges the YAML logging section to logging.Config.
// Overrides such as --debug are applied by the caller afterwards.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		File:   lc.File,
	}
}
