package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Validates the effective configuration: the global file, any project overlay,
.env and CARBONSIM_* variables, and flags, merged in that order.

This includes:
- Output format and logging settings
- Projection heuristics (growth floor, revenue multiple, year bound)
- Cache TTL and size limits
- The reference dataset path, which is loaded and schema-checked`,
		Example: `  # Validate current configuration
  carbonsim config validate

  # Validate and show the effective values
  carbonsim config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ds, err := loadDataset(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		cmd.Println()
		cmd.Printf("Config file: %s\n", cfg.ConfigPath())
		if dir := config.GetResolvedProjectDir(); dir != "" {
			cmd.Printf("Project overlay: %s\n", dir)
		}
		cmd.Printf("Dataset: %s (schema %s, %d countries)\n",
			ds.Name(), ds.SchemaVersion(), len(ds.Countries()))
		cmd.Println()
		for _, kv := range cfg.List() {
			cmd.Printf("  %s = %s\n", kv[0], kv[1])
		}
	}

	return nil
}
