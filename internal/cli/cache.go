package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/config"
	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/engine/cache"
	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/logging"
	"github.com/ecoimpact/carbonsim/internal/tui"
)

// cacheStatus is the JSON form of cache status.
type cacheStatus struct {
	Enabled    bool   `json:"enabled"`
	Directory  string `json:"directory"`
	TTL        string `json:"ttl"`
	TTLSeconds int    `json:"ttl_seconds"`
	MaxSizeMB  int    `json:"max_size_mb"`
	Entries    int    `json:"entries"`
	SizeBytes  int64  `json:"size_bytes"`
}

// openCacheForAdmin opens the store even when caching is disabled for runs,
// so its contents can still be inspected and cleared.
func openCacheForAdmin() (*cache.FileStore, error) {
	cfg := *config.GetGlobalConfig()
	cfg.Cache.Enabled = true
	return openCache(&cfg)
}

// NewCacheStatusCmd creates the cache status command.
func NewCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show result cache location, size and settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			format, err := outputFormat(cfg)
			if err != nil {
				return err
			}
			store, err := openCacheForAdmin()
			if err != nil {
				return err
			}
			count, err := store.Count()
			if err != nil {
				return err
			}
			size, err := store.Size()
			if err != nil {
				return err
			}

			st := cacheStatus{
				Enabled:    cfg.Cache.Enabled,
				Directory:  store.Directory(),
				TTL:        cache.FormatDuration(time.Duration(cfg.Cache.TTLSeconds) * time.Second),
				TTLSeconds: cfg.Cache.TTLSeconds,
				MaxSizeMB:  cfg.Cache.MaxSizeMB,
				Entries:    count,
				SizeBytes:  size,
			}
			if format != engine.OutputTable {
				return engine.RenderJSON(cmd.OutOrStdout(), st)
			}

			tw := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Enabled:\t%t\n", st.Enabled)
			fmt.Fprintf(tw, "Directory:\t%s\n", st.Directory)
			fmt.Fprintf(tw, "TTL:\t%s\n", st.TTL)
			fmt.Fprintf(tw, "Max size:\t%d MB\n", st.MaxSizeMB)
			fmt.Fprintf(tw, "Entries:\t%s\n", greenops.FormatNumber(int64(st.Entries)))
			fmt.Fprintf(tw, "Size:\t%s bytes\n", greenops.FormatNumber(st.SizeBytes))
			return tw.Flush()
		},
	}
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached result",
		Example: `  carbonsim cache clear
  carbonsim cache clear --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openCacheForAdmin()
			if err != nil {
				return err
			}

			if !yes {
				interactive := tui.CurrentEnvironment().StdinIsTTY
				if !interactive {
					return errors.New("refusing to clear the cache without a terminal, use --yes")
				}
				answer := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), interactive,
					fmt.Sprintf("Delete all cached results in %s?", store.Directory()))
				if !answer.Accepted {
					cmd.Println("Aborted")
					return nil
				}
			}

			removed, err := store.Clear()
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			logging.FromContext(ctx).Info().Ctx(ctx).
				Str("operation", "cache_clear").
				Int("removed", removed).
				Msg("cache cleared")
			cmd.Printf("Removed %d cached results\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// NewCacheCleanupCmd creates the cache cleanup command.
func NewCacheCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired cached results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCacheForAdmin()
			if err != nil {
				return err
			}
			removed, err := store.CleanupExpired()
			if err != nil {
				return fmt.Errorf("cleaning cache: %w", err)
			}
			cmd.Printf("Removed %d expired results\n", removed)
			return nil
		},
	}
}
