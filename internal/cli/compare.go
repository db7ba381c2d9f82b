package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/tui"
)

// NewCompareCmd creates the compare command, which simulates two policies
// and reports right minus left for each headline figure.
func NewCompareCmd() *cobra.Command {
	var (
		flags       requestFlags
		left, right string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two policies side by side",
		Long: `Simulates two policies and prints their headline figures with deltas
(right minus left). Shared fields can be given as flags; --left and --right
override them in the compact key=value form.`,
		Example: `  # Tax versus ETS at the same price in Germany
  carbonsim compare --country Germany --price 60 --coverage 40 --left type=tax --right type=ets

  # Two countries
  carbonsim compare --left "country=Chile,type=tax,price=25,coverage=30" \
                    --right "country=Mexico,type=tax,price=25,coverage=30"`,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			if left == "" || right == "" {
				return fmt.Errorf("%w: --left and --right are required", policy.ErrInvalidRequest)
			}

			l, err := flags.request(left)
			if err != nil {
				return err
			}
			r, err := flags.request(right)
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

			cmp, err := sess.engine.Compare(ctx, l, r)
			if err != nil {
				return err
			}

			if format == engine.OutputTable && detectMode(cmd, interactive) == tui.OutputModeInteractive {
				return tui.Run(cmp.Left, cmp.Right)
			}
			return engine.RenderComparison(cmd.OutOrStdout(), format, cmp)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&left, "left", "", "left policy in key=value form")
	cmd.Flags().StringVar(&right, "right", "", "right policy in key=value form")
	cmd.Flags().BoolVar(&interactive, "tui", false, "browse both projections interactively")

	return cmd
}
