// Package tx provides the commands that build unsigned ChainBallotX transactions and broadcast
// signed ones.
package tx

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

var (
	txShort = "Build and broadcast contract transactions"

	txLong = text.LongDesc(`
		Commands that build unsigned ChainBallotX transactions and broadcast signed ones.

		The build commands print the transaction as JSON. Sign it with a wallet or
		another signer, then send it with "tx broadcast".
	`)
)

// Config holds the configuration for tx commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Deps holds the injectable dependencies for tx commands.
type Deps struct {
	// EnvironmentLoader connects to the configured network.
	// Default: environment.Load
	EnvironmentLoader environment.LoaderFunc

	// Now is the clock used to check that a proposal is still open.
	// Default: time.Now
	Now func() time.Time

	// ReadFile reads the signed transaction file.
	// Default: os.ReadFile
	ReadFile func(name string) ([]byte, error)

	// WriteFile writes the --out file.
	// Default: os.WriteFile
	WriteFile func(name string, data []byte, perm os.FileMode) error
}

func (d *Deps) applyDefaults() {
	if d.EnvironmentLoader == nil {
		d.EnvironmentLoader = environment.Load
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ReadFile == nil {
		d.ReadFile = os.ReadFile
	}
	if d.WriteFile == nil {
		d.WriteFile = os.WriteFile
	}
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	var missing []string

	if c.Logger == nil {
		missing = append(missing, "Logger")
	}

	if len(missing) > 0 {
		return errors.New("tx.Config: missing required fields: " + strings.Join(missing, ", "))
	}

	return nil
}

func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates the tx command with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.deps()

	cmd := &cobra.Command{
		Use:   "tx",
		Short: txShort,
		Long:  txLong,
	}

	cmd.AddCommand(newCreateProposalCmd(cfg))
	cmd.AddCommand(newVoteCmd(cfg))
	cmd.AddCommand(newCancelCmd(cfg))
	cmd.AddCommand(newPauseCmd(cfg))
	cmd.AddCommand(newUnpauseCmd(cfg))
	cmd.AddCommand(newTransferOwnershipCmd(cfg))
	cmd.AddCommand(newBroadcastCmd(cfg))

	return cmd, nil
}

// unsigned is the output of the build commands.
type unsigned struct {
	Transaction multiversx.Transaction `json:"transaction"`
	DataText    string                 `json:"dataText"`
}

// writeUnsigned prints tx as JSON, or writes it to out when set.
func writeUnsigned(cmd *cobra.Command, cfg Config, tx multiversx.Transaction, out string) error {
	v := unsigned{Transaction: tx, DataText: tx.DataString()}
	if out == "" {
		return text.JSON(cmd.OutOrStdout(), v)
	}

	var b strings.Builder
	if err := text.JSON(&b, v); err != nil {
		return err
	}
	if err := cfg.deps().WriteFile(out, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unsigned transaction written to %s\n", out)

	return nil
}
