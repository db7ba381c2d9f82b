package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/tui"
)

// defaultTerminalWidth is used when stdout is not a terminal.
const defaultTerminalWidth = 100

// terminalWidth returns the stdout width, or a default off-terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultTerminalWidth
}

// detectMode reads --no-color and --plain and asks tui which mode applies.
func detectMode(cmd *cobra.Command, interactive bool) tui.OutputMode {
	noColor, _ := cmd.Flags().GetBool("no-color")
	plain, _ := cmd.Flags().GetBool("plain")
	return tui.DetectOutputMode(interactive, noColor, plain)
}

// RenderResults routes simulation results to the renderer for format and,
// for table output, the detected terminal mode (Plain, Styled, or Interactive).
func RenderResults(cmd *cobra.Command, format engine.OutputFormat, interactive bool, results ...*engine.Result) error {
	w := cmd.OutOrStdout()

	// Structured formats bypass the TUI completely.
	switch format {
	case engine.OutputJSON:
		if len(results) == 1 {
			return engine.RenderJSON(w, results[0].Rounded())
		}
		rounded := make([]*engine.Result, len(results))
		for i, r := range results {
			rounded[i] = r.Rounded()
		}
		return engine.RenderJSON(w, rounded)
	case engine.OutputNDJSON:
		return engine.RenderNDJSON(w, results...)
	case engine.OutputTable:
	default:
		return fmt.Errorf("%w: %q", engine.ErrUnknownFormat, format)
	}

	switch detectMode(cmd, interactive) {
	case tui.OutputModeInteractive:
		return tui.Run(results...)
	case tui.OutputModeStyled:
		return renderStyledOutput(w, results)
	case tui.OutputModePlain:
		return renderPlainOutput(w, results)
	default:
		return renderPlainOutput(w, results)
	}
}

func renderStyledOutput(w io.Writer, results []*engine.Result) error {
	width := terminalWidth()
	for _, res := range results {
		if _, err := fmt.Fprintln(w, tui.RenderSummary(res, width)); err != nil {
			return err
		}
		if err := engine.RenderProjectionTable(w, res.Projections); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// renderPlainOutput renders the standard tabwriter tables.
func renderPlainOutput(w io.Writer, results []*engine.Result) error {
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := engine.RenderTable(w, res); err != nil {
			return err
		}
	}
	return nil
}
