// Command carbonsim simulates carbon-pricing policies from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecoimpact/carbonsim/internal/cli"
	"github.com/ecoimpact/carbonsim/internal/config"
	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/greenops"
	"github.com/ecoimpact/carbonsim/internal/policy"
	"github.com/ecoimpact/carbonsim/internal/refdata"
	"github.com/ecoimpact/carbonsim/pkg/version"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitDataErr  = 3
	exitCanceled = 130
)

func run(ctx context.Context, args []string) error {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// exitCode maps an error returned by the CLI to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCanceled
	case errors.Is(err, refdata.ErrUnsupportedSchema):
		return exitDataErr
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, policy.ErrInvalidRequest),
		errors.Is(err, engine.ErrUnknownFormat),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrUnknownKey),
		errors.Is(err, greenops.ErrInvalidUnit),
		errors.Is(err, greenops.ErrNegativeValue):
		return exitUsage
	default:
		return exitFailure
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
