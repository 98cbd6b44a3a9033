package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cli"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/pkg/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitConfigError = 3
)

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(context.Background())
}

// exitCode maps an error from run to a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrUnknownKey):
		return exitConfigError
	case errors.Is(err, engine.ErrInvalidInput), errors.Is(err, engine.ErrUnrecognizedMode):
		return exitUsage
	default:
		return exitError
	}
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
