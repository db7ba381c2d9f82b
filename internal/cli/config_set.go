package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/config"
	"github.com/ecoimpact/carbonsim/internal/engine"
)

// targetConfigPath is the file config set writes: the project overlay when
// one is resolved, otherwise the global file.
func targetConfigPath(global bool) (string, error) {
	if dir := config.GetResolvedProjectDir(); dir != "" && !global {
		return filepath.Join(dir, "config.yaml"), nil
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Sets one key in the configuration file and saves it. The file is validated
before it is written. Run "carbonsim config list" for the available keys.`,
		Example: `  carbonsim config set output.default_format json
  carbonsim config set projection.max_years 30
  carbonsim config set cache.ttl_seconds 600`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := targetConfigPath(global)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("Set %s = %s in %s\n", strings.ToLower(args[0]), args[1], path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "write the global configuration even inside a project")
	return cmd
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print one effective configuration value",
		Example: `  carbonsim config get projection.max_years`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every effective configuration value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			format, err := outputFormat(cfg)
			if err != nil {
				return err
			}
			pairs := cfg.List()
			if format != engine.OutputTable {
				m := make(map[string]string, len(pairs))
				for _, kv := range pairs {
					m[kv[0]] = kv[1]
				}
				return engine.RenderJSON(cmd.OutOrStdout(), m)
			}
			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(tw, "KEY\tVALUE")
			for _, kv := range pairs {
				fmt.Fprintf(tw, "%s\t%s\n", kv[0], kv[1])
			}
			return tw.Flush()
		},
	}
}
