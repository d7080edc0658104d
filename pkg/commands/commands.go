// Package commands assembles the chainballotx CLI from the command packages.
//
// There are two ways to use commands from this package:
//
// 1. Via NewRootCommand, which builds the complete chainballotx command tree:
//
//	root, err := commands.NewRootCommand(lggr, version)
//
// 2. Via the Commands factory or direct package imports, to mount single command groups in
// another CLI or to inject test dependencies:
//
//	import "github.com/chainballotx/chainballotx-dashboard/pkg/commands/tx"
//
//	app.AddCommand(tx.NewCommand(tx.Config{
//	    Logger: lggr,
//	    Deps:   tx.Deps{EnvironmentLoader: myLoader},
//	}))
package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/abi"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/proposals"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/serve"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/stats"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/tx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Proposals creates the proposals command group.
func (c *Commands) Proposals() (*cobra.Command, error) {
	return proposals.NewCommand(proposals.Config{Logger: c.lggr})
}

// Stats creates the stats command.
func (c *Commands) Stats() (*cobra.Command, error) {
	return stats.NewCommand(stats.Config{Logger: c.lggr})
}

// Tx creates the tx command group for building and broadcasting transactions.
func (c *Commands) Tx() (*cobra.Command, error) {
	return tx.NewCommand(tx.Config{Logger: c.lggr})
}

// ABI creates the abi command group.
func (c *Commands) ABI() (*cobra.Command, error) {
	return abi.NewCommand(abi.Config{Logger: c.lggr})
}

// Serve creates the serve command that runs the dashboard.
func (c *Commands) Serve() (*cobra.Command, error) {
	return serve.NewCommand(serve.Config{Logger: c.lggr})
}

var rootLong = text.LongDesc(`
	chainballotx reads and drives the ChainBallotX voting contract on MultiversX.

	It serves the governance dashboard, lists proposals and statistics, and builds
	unsigned contract transactions for an external signer.
`)

// NewRootCommand builds the chainballotx command with every subcommand and the persistent
// --config, --network and --log-level flags.
func NewRootCommand(lggr logger.Logger, version string) (*cobra.Command, error) {
	if lggr == nil {
		return nil, errors.New("logger is required")
	}

	root := &cobra.Command{
		Use:           "chainballotx",
		Short:         "ChainBallotX governance dashboard and CLI",
		Long:          rootLong,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.Global(root)

	cmds := New(lggr)
	for _, build := range []func() (*cobra.Command, error){
		cmds.Serve,
		cmds.Proposals,
		cmds.Stats,
		cmds.Tx,
		cmds.ABI,
	} {
		cmd, err := build()
		if err != nil {
			return nil, err
		}
		root.AddCommand(cmd)
	}

	return root, nil
}
