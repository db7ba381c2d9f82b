package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how human-readable output is presented.
type OutputMode int

const (
	// OutputModePlain is uncoloured tabular text.
	OutputModePlain OutputMode = iota
	// OutputModeStyled is lipgloss-styled text without interaction.
	OutputModeStyled
	// OutputModeInteractive runs the Bubble Tea viewer.
	OutputModeInteractive
)

// String implements fmt.Stringer.
func (m OutputMode) String() string {
	switch m {
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "plain"
	}
}

// Environment is the slice of process state DetectOutputMode looks at.
type Environment struct {
	StdoutIsTTY bool
	StdinIsTTY  bool
	LookupEnv   func(string) (string, bool)
}

// CurrentEnvironment inspects the running process.
func CurrentEnvironment() Environment {
	return Environment{
		StdoutIsTTY: term.IsTerminal(int(os.Stdout.Fd())),
		StdinIsTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		LookupEnv:   os.LookupEnv,
	}
}

// DetectOutputMode picks a mode for the current process.
func DetectOutputMode(interactive, noColor, plain bool) OutputMode {
	return DetectOutputModeIn(CurrentEnvironment(), interactive, noColor, plain)
}

// DetectOutputModeIn picks a mode. interactive requests the viewer, which is
// granted only on a terminal. Plain output is forced by plain, noColor,
// NO_COLOR, TERM=dumb, CI or a non-terminal stdout.
func DetectOutputModeIn(env Environment, interactive, noColor, plain bool) OutputMode {
	lookup := env.LookupEnv
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	if plain || noColor || !env.StdoutIsTTY {
		return OutputModePlain
	}
	if _, ok := lookup("NO_COLOR"); ok {
		return OutputModePlain
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return OutputModePlain
	}
	if v, _ := lookup("CI"); v != "" {
		return OutputModePlain
	}
	if interactive && env.StdinIsTTY {
		return OutputModeInteractive
	}
	return OutputModeStyled
}
