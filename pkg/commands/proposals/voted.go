package proposals

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
)

var (
	votedShort = "Check whether a wallet voted on a proposal"

	votedExample = text.Examples(`
		chainballotx proposals voted 3 --address erd1...
	`)
)

func newVotedCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "voted <id>",
		Short:   votedShort,
		Example: votedExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return runVoted(cmd, cfg, id, flags.MustString(cmd.Flags().GetString("address")))
		},
	}

	flags.Address(cmd, true)

	return cmd
}

func runVoted(cmd *cobra.Command, cfg Config, id uint64, address string) error {
	if !multiversx.IsValidAddress(address) {
		return fmt.Errorf("--address: %w", multiversx.ErrInvalidAddress)
	}

	deps := cfg.deps()
	ctx := cmd.Context()

	env, err := deps.EnvironmentLoader(ctx, environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	voted := env.Reader.HasVoted(ctx, address, id)
	fmt.Fprintln(cmd.OutOrStdout(), voted)

	return nil
}
