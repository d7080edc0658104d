package proposals

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/internal/dashboard"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
)

var (
	showShort = "Show one proposal"

	showExample = text.Examples(`
		chainballotx proposals show 0
		chainballotx proposals show 0 --json
	`)
)

func newShowCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show <id>",
		Short:   showShort,
		Example: showExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return runShow(cmd, cfg, id, flags.MustBool(cmd.Flags().GetBool("json")))
		},
	}

	flags.JSON(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, cfg Config, id uint64, asJSON bool) error {
	deps := cfg.deps()
	ctx := cmd.Context()

	env, err := deps.EnvironmentLoader(ctx, environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	p, err := env.Reader.GetProposal(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read proposal %d: %w", id, err)
	}
	badge := dashboard.ProposalBadge(p, deps.Now())

	if asJSON {
		return text.JSON(cmd.OutOrStdout(), listedProposal{Proposal: p, Badge: badge})
	}

	text.KeyValues(cmd.OutOrStdout(), [][]string{
		{"ID", strconv.FormatUint(p.ID, 10)},
		{"Title", p.Title},
		{"Description", p.Description},
		{"Status", badge},
		{"Votes for", strconv.FormatUint(p.VotesFor, 10)},
		{"Votes against", strconv.FormatUint(p.VotesAgainst, 10)},
		{"Created", formatDate(p.CreatedAt)},
		{"Ends", formatDate(p.EndsAt)},
		{"Creator", p.Creator},
		{"Explorer", env.Chain.ExplorerAddressURL(p.Creator)},
	})

	return nil
}
