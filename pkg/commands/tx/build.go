package tx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
)

// buildFunc builds one unsigned transaction for sender.
type buildFunc func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error)

// runBuild loads the environment, validates the sender and writes the built transaction.
func runBuild(cmd *cobra.Command, cfg Config, build buildFunc) error {
	sender := flags.MustString(cmd.Flags().GetString("sender"))
	if !multiversx.IsValidAddress(sender) {
		return fmt.Errorf("--sender: %w", multiversx.ErrInvalidAddress)
	}

	deps := cfg.deps()
	ctx := cmd.Context()

	env, err := deps.EnvironmentLoader(ctx, environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	tx, err := build(ctx, env, sender)
	if err != nil {
		return err
	}

	return writeUnsigned(cmd, cfg, tx, flags.MustString(cmd.Flags().GetString("out")))
}

func newBuildCmd(cfg Config, use, short, example string, args cobra.PositionalArgs, build func(cmd *cobra.Command, args []string) (buildFunc, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    args,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := build(cmd, args)
			if err != nil {
				return err
			}

			return runBuild(cmd, cfg, fn)
		},
	}

	flags.Sender(cmd)
	flags.Output(cmd)

	return cmd
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("proposal id must be a non negative integer, got %q", arg)
	}

	return id, nil
}

func newCreateProposalCmd(cfg Config) *cobra.Command {
	example := text.Examples(`
		chainballotx tx create-proposal --sender erd1... --title "Fund the hackathon" --description "Prize pool" --days 14
	`)

	cmd := newBuildCmd(cfg, "create-proposal", "Build a create_proposal transaction", example, cobra.NoArgs,
		func(cmd *cobra.Command, _ []string) (buildFunc, error) {
			in := chainballotx.ProposalInput{
				Title:        flags.MustString(cmd.Flags().GetString("title")),
				Description:  flags.MustString(cmd.Flags().GetString("description")),
				DurationDays: flags.MustInt(cmd.Flags().GetInt("days")),
			}.Normalize()
			if err := in.Validate(); err != nil {
				return nil, err
			}

			return func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error) {
				return env.Builder.CreateProposal(ctx, sender, in)
			}, nil
		})

	cmd.Flags().String("title", "", fmt.Sprintf("Proposal title, at most %d characters (required)", chainballotx.MaxTitleLength))
	cmd.Flags().String("description", "", fmt.Sprintf("Proposal description, at most %d characters (required)", chainballotx.MaxDescriptionLength))
	cmd.Flags().Int("days", chainballotx.DefaultDurationDays, fmt.Sprintf("Voting period in days, one of %v", chainballotx.DurationDayOptions))
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newVoteCmd(cfg Config) *cobra.Command {
	example := text.Examples(`
		chainballotx tx vote 3 --sender erd1...
	`)

	cmd := newBuildCmd(cfg, "vote <id>", "Build a vote transaction", example, cobra.ExactArgs(1),
		func(cmd *cobra.Command, args []string) (buildFunc, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			force := flags.MustBool(cmd.Flags().GetBool("force"))

			return func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error) {
				if !force {
					p, err := env.Reader.GetProposal(ctx, id)
					if err != nil {
						return multiversx.Transaction{}, fmt.Errorf("failed to read proposal %d: %w", id, err)
					}
					if err := chainballotx.CheckVotable(p, env.Reader.HasVoted(ctx, sender, id), cfg.deps().Now()); err != nil {
						return multiversx.Transaction{}, err
					}
				}

				return env.Builder.Vote(ctx, sender, id)
			}, nil
		})

	cmd.Flags().Bool("force", false, "Skip the check that the proposal is open and not voted yet")

	return cmd
}

func newCancelCmd(cfg Config) *cobra.Command {
	return newBuildCmd(cfg, "cancel <id>", "Build a cancel_proposal transaction", "", cobra.ExactArgs(1),
		func(_ *cobra.Command, args []string) (buildFunc, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}

			return func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error) {
				return env.Builder.CancelProposal(ctx, sender, id)
			}, nil
		})
}

func newPauseCmd(cfg Config) *cobra.Command {
	return newBuildCmd(cfg, "pause", "Build a pause transaction (owner only)", "", cobra.NoArgs,
		func(*cobra.Command, []string) (buildFunc, error) {
			return func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error) {
				return env.Builder.Pause(ctx, sender)
			}, nil
		})
}

func newUnpauseCmd(cfg Config) *cobra.Command {
	return newBuildCmd(cfg, "unpause", "Build an unpause transaction (owner only)", "", cobra.NoArgs,
		func(*cobra.Command, []string) (buildFunc, error) {
			return func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error) {
				return env.Builder.Unpause(ctx, sender)
			}, nil
		})
}

func newTransferOwnershipCmd(cfg Config) *cobra.Command {
	cmd := newBuildCmd(cfg, "transfer-ownership", "Build a transfer_ownership transaction (owner only)", "", cobra.NoArgs,
		func(cmd *cobra.Command, _ []string) (buildFunc, error) {
			newOwner := flags.MustString(cmd.Flags().GetString("new-owner"))
			if !multiversx.IsValidAddress(newOwner) {
				return nil, fmt.Errorf("--new-owner: %w", multiversx.ErrInvalidAddress)
			}

			return func(ctx context.Context, env *environment.Environment, sender string) (multiversx.Transaction, error) {
				return env.Builder.TransferOwnership(ctx, sender, newOwner)
			}, nil
		})

	cmd.Flags().String("new-owner", "", "Address of the new owner (required)")
	_ = cmd.MarkFlagRequired("new-owner")

	return cmd
}
