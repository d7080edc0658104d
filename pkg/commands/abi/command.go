// Package abi provides commands describing the embedded ChainBallotX contract ABI. They work
// offline.
package abi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/contract/chainballotx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

var (
	abiShort = "Describe the contract ABI"

	abiLong = text.LongDesc(`
		Lists the endpoints and events of the ChainBallotX contract ABI bundled with
		this binary. No network access is needed.
	`)
)

// ABIFunc returns the ABI document to describe.
type ABIFunc func() (*chainballotx.ABIDocument, error)

// Config holds the configuration for abi commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// ABI returns the ABI document.
	// Default: chainballotx.ABI
	ABI ABIFunc
}

// NewCommand creates the abi command with the endpoints and events subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if cfg.Logger == nil {
		return nil, errors.New("abi.Config: missing required fields: Logger")
	}
	if cfg.ABI == nil {
		cfg.ABI = chainballotx.ABI
	}

	cmd := &cobra.Command{
		Use:   "abi",
		Short: abiShort,
		Long:  abiLong,
	}

	cmd.AddCommand(newEndpointsCmd(cfg))
	cmd.AddCommand(newEventsCmd(cfg))

	return cmd, nil
}

func newEndpointsCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List the contract endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := cfg.ABI()
			if err != nil {
				return err
			}

			endpoints := doc.AvailableEndpoints()
			if flags.MustBool(cmd.Flags().GetBool("json")) {
				return text.JSON(cmd.OutOrStdout(), endpoints)
			}

			rows := make([][]string, 0, len(endpoints))
			for _, e := range endpoints {
				rows = append(rows, []string{
					e.Name,
					e.Mutability,
					strconv.Itoa(e.Inputs),
					strconv.Itoa(e.Outputs),
				})
			}
			text.Table(cmd.OutOrStdout(), []string{"Endpoint", "Mutability", "Inputs", "Outputs"}, rows)

			return nil
		},
	}

	flags.JSON(cmd)

	return cmd
}

func newEventsCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the contract events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := cfg.ABI()
			if err != nil {
				return err
			}

			if flags.MustBool(cmd.Flags().GetBool("json")) {
				return text.JSON(cmd.OutOrStdout(), doc.Events)
			}

			rows := make([][]string, 0, len(doc.Events))
			for _, e := range doc.Events {
				rows = append(rows, []string{e.Identifier, formatParams(e.Inputs)})
			}
			text.Table(cmd.OutOrStdout(), []string{"Event", "Inputs"}, rows)

			return nil
		},
	}

	flags.JSON(cmd)

	return cmd
}

func formatParams(params []chainballotx.ABIParam) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := fmt.Sprintf("%s: %s", p.Name, p.Type)
		if p.Indexed {
			s += " (indexed)"
		}
		parts = append(parts, s)
	}

	return strings.Join(parts, ", ")
}
