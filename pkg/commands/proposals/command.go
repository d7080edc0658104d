// Package proposals provides the commands that read proposals from the ChainBallotX contract.
package proposals

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

var (
	proposalsShort = "Read governance proposals"

	proposalsLong = text.LongDesc(`
		Commands for reading proposals from the ChainBallotX contract.

		When the gateway cannot be reached the list falls back to sample proposals,
		which are marked as placeholders.
	`)
)

// Config holds the configuration for proposals commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Deps holds the injectable dependencies for proposals commands.
type Deps struct {
	// EnvironmentLoader connects to the configured network.
	// Default: environment.Load
	EnvironmentLoader environment.LoaderFunc

	// Now is the clock used for the Expired status.
	// Default: time.Now
	Now func() time.Time
}

func (d *Deps) applyDefaults() {
	if d.EnvironmentLoader == nil {
		d.EnvironmentLoader = environment.Load
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	var missing []string

	if c.Logger == nil {
		missing = append(missing, "Logger")
	}

	if len(missing) > 0 {
		return errors.New("proposals.Config: missing required fields: " + strings.Join(missing, ", "))
	}

	return nil
}

func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates the proposals command with its list, show and voted subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.deps()

	cmd := &cobra.Command{
		Use:   "proposals",
		Short: proposalsShort,
		Long:  proposalsLong,
	}

	cmd.AddCommand(newListCmd(cfg))
	cmd.AddCommand(newShowCmd(cfg))
	cmd.AddCommand(newVotedCmd(cfg))

	return cmd, nil
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, errors.New("proposal id must be a non negative integer, got " + strconv.Quote(arg))
	}

	return id, nil
}
