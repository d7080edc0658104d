package proposals

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/internal/dashboard"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
)

const dateLayout = "2006-01-02 15:04 MST"

var (
	listShort = "List all proposals"

	listLong = text.LongDesc(`
		Lists every proposal stored by the contract, newest last.

		With --address the output also shows whether that wallet already voted.
	`)

	listExample = text.Examples(`
		# List proposals on devnet
		chainballotx proposals list

		# Include the vote status of a wallet, as JSON
		chainballotx proposals list --address erd1... --json
	`)
)

type listFlags struct {
	address string
	json    bool
}

// listedProposal is one entry of the JSON output.
type listedProposal struct {
	chainballotx.Proposal

	Badge string `json:"badge"`
	Voted *bool  `json:"voted,omitempty"`
}

func newListCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   listShort,
		Long:    listLong,
		Example: listExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := listFlags{
				address: flags.MustString(cmd.Flags().GetString("address")),
				json:    flags.MustBool(cmd.Flags().GetBool("json")),
			}

			return runList(cmd, cfg, f)
		},
	}

	flags.Address(cmd, false)
	flags.JSON(cmd)

	return cmd
}

func runList(cmd *cobra.Command, cfg Config, f listFlags) error {
	if f.address != "" && !multiversx.IsValidAddress(f.address) {
		return fmt.Errorf("--address: %w", multiversx.ErrInvalidAddress)
	}

	deps := cfg.deps()
	ctx := cmd.Context()

	env, err := deps.EnvironmentLoader(ctx, environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	proposals := env.Reader.GetProposals(ctx)

	var voted map[uint64]bool
	if f.address != "" {
		voted = env.Reader.VoteStatus(ctx, f.address, proposals)
	}

	now := deps.Now()
	listed := make([]listedProposal, 0, len(proposals))
	for _, p := range proposals {
		lp := listedProposal{Proposal: p, Badge: dashboard.ProposalBadge(p, now)}
		if voted != nil {
			v := voted[p.ID]
			lp.Voted = &v
		}
		listed = append(listed, lp)
	}

	if f.json {
		return text.JSON(cmd.OutOrStdout(), listed)
	}

	if len(listed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No proposals yet.")
		return nil
	}

	header := []string{"ID", "Title", "Status", "Votes", "Ends", "Creator"}
	if voted != nil {
		header = append(header, "Voted")
	}

	rows := make([][]string, 0, len(listed))
	for _, lp := range listed {
		title := lp.Title
		if lp.Placeholder {
			title += " (sample)"
		}
		row := []string{
			strconv.FormatUint(lp.ID, 10),
			title,
			lp.Badge,
			strconv.FormatUint(lp.TotalVotes(), 10),
			formatDate(lp.EndsAt),
			multiversx.TruncateAddress(lp.Creator, 10, 8),
		}
		if lp.Voted != nil {
			row = append(row, strconv.FormatBool(*lp.Voted))
		}
		rows = append(rows, row)
	}
	text.Table(cmd.OutOrStdout(), header, rows)

	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.UTC().Format(dateLayout)
}
