package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ecoimpact/carbonsim/internal/engine/batch"
	"github.com/ecoimpact/carbonsim/internal/logging"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/round"
)

// MaxSweepSize bounds the number of simulations one sweep may expand to.
const MaxSweepSize = 10000

// smallSweep is the size up to which every simulation is its own batch.
const smallSweep = 256

// Grid is the cartesian product of its dimensions.
type Grid struct {
	Countries   []string  `yaml:"countries"`
	PolicyTypes []string  `yaml:"policy_types"`
	Prices      []float64 `yaml:"prices"`
	Coverages   []float64 `yaml:"coverages"`
}

// SweepSpec is the contents of a sweep file.
type SweepSpec struct {
	// Defaults fill unset fields of every request.
	Defaults    policy.Request   `yaml:"defaults"`
	Requests    []policy.Request `yaml:"requests"`
	Grid        *Grid            `yaml:"grid"`
	Concurrency int              `yaml:"concurrency"`
}

// LoadSweep reads a sweep file.
func LoadSweep(path string) (*SweepSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep file: %w", err)
	}
	return ParseSweep(data)
}

// ParseSweep decodes a sweep document.
func ParseSweep(data []byte) (*SweepSpec, error) {
	var spec SweepSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing sweep file: %w", err)
	}
	return &spec, nil
}

// Expand returns every request of the sweep: explicit requests first, then the grid.
func (s *SweepSpec) Expand() ([]policy.Request, error) {
	var out []policy.Request
	for _, r := range s.Requests {
		out = append(out, s.withDefaults(r))
	}

	if g := s.Grid; g != nil {
		types := g.PolicyTypes
		if len(types) == 0 {
			types = []string{string(s.Defaults.PolicyType)}
		}
		prices := g.Prices
		if len(prices) == 0 {
			prices = []float64{s.Defaults.CarbonPrice}
		}
		coverages := g.Coverages
		if len(coverages) == 0 {
			coverages = []float64{s.Defaults.CoveragePercent}
		}

		size := len(g.Countries) * len(types) * len(prices) * len(coverages)
		if len(out)+size > MaxSweepSize {
			return nil, fmt.Errorf("%w: sweep expands to %d simulations (max %d)",
				ErrInvalidInput, len(out)+size, MaxSweepSize)
		}
		for _, c := range g.Countries {
			for _, t := range types {
				for _, p := range prices {
					for _, cov := range coverages {
						out = append(out, s.withDefaults(policy.Request{
							Country:         c,
							PolicyType:      policy.Type(t),
							CarbonPrice:     p,
							CoveragePercent: cov,
						}))
					}
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: sweep defines no requests", ErrInvalidInput)
	}
	if len(out) > MaxSweepSize {
		return nil, fmt.Errorf("%w: sweep has %d simulations (max %d)", ErrInvalidInput, len(out), MaxSweepSize)
	}

	for i, r := range out {
		if r.PolicyType == "" {
			continue
		}
		t, err := policy.ParseType(string(r.PolicyType))
		if err != nil {
			return nil, fmt.Errorf("%w: request %d: %w", ErrInvalidInput, i, err)
		}
		out[i].PolicyType = t
	}
	return out, nil
}

func (s *SweepSpec) withDefaults(r policy.Request) policy.Request {
	d := s.Defaults
	if r.PolicyType == "" {
		r.PolicyType = d.PolicyType
	}
	if r.CarbonPrice == 0 {
		r.CarbonPrice = d.CarbonPrice
	}
	if r.CoveragePercent == 0 {
		r.CoveragePercent = d.CoveragePercent
	}
	if r.StartYear == 0 {
		r.StartYear = d.StartYear
	}
	if r.ProjectionYears == 0 {
		r.ProjectionYears = d.ProjectionYears
	}
	return r
}

// SweepItem is the outcome of one request in a sweep.
type SweepItem struct {
	Index   int            `json:"index"`
	Request policy.Request `json:"request"`
	Result  *Result        `json:"result,omitempty"`
	Err     error          `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// SweepReport collects a finished sweep.
type SweepReport struct {
	Items     []SweepItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Results returns the successful results in request order.
func (r *SweepReport) Results() []*Result {
	out := make([]*Result, 0, r.Succeeded)
	for _, it := range r.Items {
		if it.Result != nil {
			out = append(out, it.Result)
		}
	}
	return out
}

// Sweep simulates every request with at most concurrency in flight.
// A failing request is recorded on its item and does not stop the others.
// The returned error is non-nil only when the sweep could not run or was cancelled.
func (e *Engine) Sweep(
	ctx context.Context,
	reqs []policy.Request,
	concurrency int,
	onProgress batch.ProgressCallback,
) (*SweepReport, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no requests", ErrInvalidInput)
	}
	concurrency = max(concurrency, 1)

	proc, err := batch.NewProcessor[policy.Request](sweepBatchSize(len(reqs), concurrency), concurrency)
	if err != nil {
		return nil, err
	}
	if onProgress != nil {
		proc.WithProgressCallback(onProgress)
	}

	items := make([]SweepItem, len(reqs))
	_, procErr := proc.Process(ctx, reqs, func(ctx context.Context, chunk []policy.Request, offset int) error {
		var errs []error
		for i, req := range chunk {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx := offset + i
			item := SweepItem{Index: idx, Request: req}
			item.Result, item.Err = e.Simulate(ctx, req)
			if item.Err != nil {
				item.Error = item.Err.Error()
				errs = append(errs, fmt.Errorf("request %d: %w", idx, item.Err))
			}
			items[idx] = item
		}
		if len(errs) > 0 {
			return &batch.ItemErrors{Errs: errs}
		}
		return nil
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep cancelled: %w", err)
	}

	report := &SweepReport{Items: items}
	for i := range items {
		if items[i].Result != nil {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "engine").
		Str("operation", "sweep").
		Int("requests", len(reqs)).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("concurrency", concurrency).
		AnErr("first_error", firstError(procErr)).
		Msg("sweep complete")
	return report, nil
}

func sweepBatchSize(n, concurrency int) int {
	if n <= smallSweep {
		return 1
	}
	return min(batch.MaxBatchSize, max(1, n/(concurrency*16)))
}

func firstError(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}

// RenderSweep writes a sweep report in format.
func RenderSweep(w io.Writer, format OutputFormat, r *SweepReport) error {
	switch format {
	case OutputJSON:
		rounded := *r
		rounded.Items = make([]SweepItem, len(r.Items))
		for i, it := range r.Items {
			if it.Result != nil {
				it.Result = it.Result.Rounded()
			}
			rounded.Items[i] = it
		}
		return RenderJSON(w, &rounded)
	case OutputNDJSON:
		return RenderNDJSON(w, r.Results()...)
	case OutputTable:
		return renderSweepTable(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderSweepTable(w io.Writer, r *SweepReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	if _, err := fmt.Fprint(tw,
		"#\tCOUNTRY\tTYPE\tPRICE\tCOVERAGE%\tREVENUE\tRISK%\tCATEGORY\tCUMULATIVE REVENUE\tCO2 CUMULATIVE\tERROR\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, it := range r.Items {
		req := it.Request
		row := []any{it.Index + 1, req.Country, req.PolicyType,
			round.String(req.CarbonPrice, round.Money), round.String(req.CoveragePercent, round.Percent)}
		if it.Result == nil {
			row = append(row, "-", "-", "-", "-", "-", it.Error)
		} else {
			res := it.Result
			last, _ := res.Final()
			row = append(row,
				FormatMillions(res.Revenue),
				round.String(res.Risk.Percent(), round.Percent),
				res.Risk.Category.String(),
				FormatMillions(last.CumulativeRevenue),
				round.String(last.CO2ReducedCumulative, round.Cumulative),
				"",
			)
		}
		if _, err := fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n", row...); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if _, err := fmt.Fprintf(tw, "\n%d succeeded, %d failed\n", r.Succeeded, r.Failed); err != nil {
		return err
	}
	return tw.Flush()
}
