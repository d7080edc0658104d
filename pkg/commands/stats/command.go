// Package stats provides the command printing the contract totals.
package stats

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

var (
	statsShort = "Show governance statistics"

	statsLong = text.LongDesc(`
		Prints the number of proposals and votes stored by the contract.

		Active proposals and participants are estimates derived from the totals.
	`)
)

// Config holds the configuration for the stats command.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// EnvironmentLoader connects to the configured network.
	// Default: environment.Load
	EnvironmentLoader environment.LoaderFunc
}

// NewCommand creates the stats command.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if cfg.Logger == nil {
		return nil, errors.New("stats.Config: missing required fields: Logger")
	}
	if cfg.EnvironmentLoader == nil {
		cfg.EnvironmentLoader = environment.Load
	}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShort,
		Long:  statsLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, cfg, flags.MustBool(cmd.Flags().GetBool("json")))
		},
	}

	flags.JSON(cmd)

	return cmd, nil
}

func runStats(cmd *cobra.Command, cfg Config, asJSON bool) error {
	ctx := cmd.Context()

	env, err := cfg.EnvironmentLoader(ctx, environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	st := env.Reader.Stats(ctx)
	if asJSON {
		return text.JSON(cmd.OutOrStdout(), st)
	}

	text.KeyValues(cmd.OutOrStdout(), [][]string{
		{"Network", env.Chain.DisplayName()},
		{"Contract", env.ContractAddress()},
		{"Proposals", strconv.FormatUint(st.TotalProposals, 10)},
		{"Votes", strconv.FormatUint(st.TotalVotes, 10)},
		{"Active (estimate)", strconv.FormatUint(st.ActiveProposals, 10)},
		{"Participants (estimate)", strconv.FormatUint(st.Participants, 10)},
	})

	return nil
}
