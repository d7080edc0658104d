// Command chainballotx serves the ChainBallotX governance dashboard and drives the voting
// contract from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainballotx/chainballotx-dashboard/pkg/commands"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	lggr, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = lggr.Sync() }()

	root, err := commands.NewRootCommand(lggr, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build commands: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
