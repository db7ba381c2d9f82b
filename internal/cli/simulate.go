package cli

import (
	"github.com/spf13/cobra"

	"github.com/ecoimpact/carbonsim/internal/logging"
)

// NewSimulateCmd creates the simulate command, which runs one policy and
// prints its base-year outcome and multi-year projection.
func NewSimulateCmd() *cobra.Command {
	var (
		flags       requestFlags
		spec        string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a carbon-pricing policy",
		Long: `Simulates a carbon tax or emissions trading system for one country.

Prints the base-year revenue, abolishment risk, emissions impact and a
year-by-year projection. Request fields come from flags; --spec accepts the
compact key=value form and overrides any flag it names.`,
		Example: `  # Carbon tax in Canada, 5 years
  carbonsim simulate --country Canada --type "Carbon tax" --price 50 --coverage 30

  # ETS in Germany for 10 years, as JSON
  carbonsim simulate --spec "country=Germany,type=ets,price=80,coverage=40,years=10" -o json

  # Browse the projection interactively
  carbonsim simulate --country Sweden --type tax --price 120 --coverage 35 --tui`,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			req, err := flags.request(spec)
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

			res, err := sess.engine.Simulate(ctx, req)
			if err != nil {
				log.Error().Ctx(ctx).Err(err).Str("operation", "simulate").Msg("simulation failed")
				return err
			}
			return RenderResults(cmd, format, interactive, res)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&spec, "spec", "", `compact request, e.g. "country=Canada,type=tax,price=50,coverage=30"`)
	cmd.Flags().BoolVar(&interactive, "tui", false, "open the interactive projection viewer")

	return cmd
}
