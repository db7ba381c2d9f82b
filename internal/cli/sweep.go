package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ecoimpact/carbonsim/internal/cli/pagination"
	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/engine/batch"
	"github.com/ecoimpact/carbonsim/internal/logging"
)

// defaultSweepConcurrency applies when neither the flag nor the file sets one.
const defaultSweepConcurrency = 4

// NewSweepCmd creates the sweep command, which runs every request of a
// sweep file concurrently and prints one row per request.
func NewSweepCmd() *cobra.Command {
	var (
		concurrency int
		sortExpr    string
		page        pagination.Params
		progress    bool
	)

	cmd := &cobra.Command{
		Use:   "sweep <file>",
		Short: "Run a batch of simulations from a YAML file",
		Long: `Runs every request listed in a sweep file, plus the cartesian product of its
grid section, with bounded concurrency. Failed requests are reported per row
and do not stop the others.

Sort fields: ` + strings.Join(pagination.SweepSortFields(), ", "),
		Example: `  # Run a sweep with 8 workers
  carbonsim sweep sweep.yaml --concurrency 8

  # Top 10 by cumulative revenue
  carbonsim sweep sweep.yaml --sort cumulative_revenue:desc --limit 10

  # Second page of 20, lowest risk first
  carbonsim sweep sweep.yaml --sort risk --page 2 --page-size 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			if err := page.Validate(); err != nil {
				return fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
			}
			sortField, sortOrder, err := pagination.ParseSort(sortExpr)
			if err != nil {
				return fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
			}

			spec, err := engine.LoadSweep(args[0])
			if err != nil {
				return err
			}
			reqs, err := spec.Expand()
			if err != nil {
				return err
			}

			sess, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { sess.close(ctx, err) }()

			format, err := outputFormat(sess.cfg)
			if err != nil {
				return err
			}

			workers := concurrency
			if !cmd.Flags().Changed("concurrency") && spec.Concurrency > 0 {
				workers = spec.Concurrency
			}
			log.Debug().Ctx(ctx).
				Str("operation", "sweep").
				Str("file", args[0]).
				Int("requests", len(reqs)).
				Int("concurrency", workers).
				Msg("starting sweep")

			var onProgress batch.ProgressCallback
			if progress || term.IsTerminal(int(os.Stderr.Fd())) {
				onProgress = progressPrinter(cmd.ErrOrStderr())
			}

			report, err := sess.engine.Sweep(ctx, reqs, workers, onProgress)
			if onProgress != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			items, err := pagination.SortSweep(report.Items, sortField, sortOrder)
			if err != nil {
				return fmt.Errorf("%w: %w", engine.ErrInvalidInput, err)
			}
			view := *report
			view.Items = pagination.Apply(page, items)

			if err := engine.RenderSweep(cmd.OutOrStdout(), format, &view); err != nil {
				return err
			}
			if page.IsEnabled() && format == engine.OutputTable {
				m := pagination.NewMeta(page, len(items))
				cmd.Printf("\nPage %d of %d (%d results)\n", m.CurrentPage, m.TotalPages, m.TotalItems)
			}

			if report.Succeeded == 0 {
				return fmt.Errorf("%w: all %d sweep requests failed", engine.ErrInvalidInput, report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultSweepConcurrency, "simulations to run in parallel")
	cmd.Flags().StringVar(&sortExpr, "sort", "", "sort rows by field[:asc|desc]")
	cmd.Flags().IntVar(&page.Limit, "limit", 0, "maximum rows to print (0 = all)")
	cmd.Flags().IntVar(&page.Offset, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&page.Page, "page", 0, "page number (requires --page-size)")
	cmd.Flags().IntVar(&page.PageSize, "page-size", 0, "rows per page")
	cmd.Flags().BoolVar(&progress, "progress", false, "print progress to stderr even when it is not a terminal")

	return cmd
}

// progressPrinter returns a callback that rewrites one status line on w.
// Callbacks arrive from worker goroutines.
func progressPrinter(w io.Writer) batch.ProgressCallback {
	var mu sync.Mutex
	return func(s batch.ProgressSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(w, "\rsimulated %d/%d (%d failed)", s.ProcessedItems, s.TotalItems, s.FailedItems)
	}
}
