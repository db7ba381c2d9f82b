package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/config"
	"github.com/ecoimpact/carbonsim/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the carbonsim CLI.
// It loads configuration (global file, project overlay, .env, environment,
// then flags), wires logging and tracing, and registers the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "carbonsim",
		Short:   "Carbon-pricing policy simulator",
		Long:    "carbonsim: Project revenue, emissions and abolishment risk of carbon-pricing policies",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				cmd.PrintErrf("Warning: %v\n", err)
			}

			projectFlag, _ := cmd.Flags().GetString("project-dir")
			wd, _ := os.Getwd()
			projectDir := config.ResolveProjectDir(cmd.Context(), projectFlag, wd)
			config.SetResolvedProjectDir(projectDir)

			cfg := config.NewWithProjectDir(cmd.Context(), projectDir)
			applyFlagOverrides(cmd, cfg)
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.Bool("debug", false, "enable debug logging")
	pf.String("project-dir", "", "project directory containing .carbonsim/config.yaml")
	pf.String("data", "", "reference dataset YAML (default: embedded dataset)")
	pf.Bool("no-cache", false, "bypass the result cache")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	pf.StringP("output", "o", "", "output format: table, json, ndjson (default from config)")
	pf.Bool("no-color", false, "disable colored output")
	pf.Bool("plain", false, "force plain table output")

	cmd.AddCommand(
		NewSimulateCmd(), NewCompareCmd(), NewSweepCmd(),
		NewCountriesCmd(), NewCountryInfoCmd(), NewPolicyTypesCmd(), NewEquivalencyCmd(),
		newCacheCmd(), newConfigCmd(),
	)

	return cmd
}

// applyFlagOverrides lets explicitly set persistent flags win over config and env.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path, _ = flags.GetString("data")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile, _ = flags.GetString("metrics-file")
	}
	if flags.Changed("output") {
		cfg.Output.DefaultFormat, _ = flags.GetString("output")
	}
}

const rootCmdExample = `  # Simulate a carbon tax in Canada
  carbonsim simulate --country Canada --type "Carbon tax" --price 50 --coverage 30

  # Same policy, compact form, as JSON
  carbonsim simulate --spec "country=Canada,type=tax,price=50,coverage=30,years=10" -o json

  # Compare two designs
  carbonsim compare --left "country=Germany,type=ets,price=60,coverage=40" \
                    --right "country=Germany,type=tax,price=60,coverage=40"

  # Run a parameter sweep from a YAML file
  carbonsim sweep sweep.yaml --concurrency 8 --sort cumulative_revenue:desc --limit 10

  # Show country indicators
  carbonsim country-info Sweden

  # Initialize configuration
  carbonsim config init

  # Set configuration values
  carbonsim config set output.default_format json`

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Result cache management commands"}
	cmd.AddCommand(NewCacheStatusCmd(), NewCacheClearCmd(), NewCacheCleanupCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
