package tx

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/txops"
	"github.com/chainballotx/chainballotx-dashboard/operations"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/environment"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/flags"
	"github.com/chainballotx/chainballotx-dashboard/pkg/commands/text"
)

var (
	broadcastShort = "Broadcast a signed transaction"

	broadcastLong = text.LongDesc(`
		Reads a signed transaction from a JSON file and sends it to the gateway.

		The file holds either the transaction object or the output of a build command
		with the signature added. With --wait the command polls the gateway until the
		transaction is executed.
	`)

	broadcastExample = text.Examples(`
		chainballotx tx broadcast --file signed.json
		chainballotx tx broadcast --file signed.json --wait --attempts 30
	`)
)

type broadcastFlags struct {
	file     string
	wait     bool
	attempts uint
	delay    time.Duration
}

// broadcastResult is printed after a broadcast.
type broadcastResult struct {
	txops.BroadcastOutput

	Status string `json:"status,omitempty"`
}

func newBroadcastCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "broadcast",
		Short:   broadcastShort,
		Long:    broadcastLong,
		Example: broadcastExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			attempts, _ := cmd.Flags().GetUint("attempts")
			delay, _ := cmd.Flags().GetDuration("delay")
			f := broadcastFlags{
				file:     flags.MustString(cmd.Flags().GetString("file")),
				wait:     flags.MustBool(cmd.Flags().GetBool("wait")),
				attempts: attempts,
				delay:    delay,
			}

			return runBroadcast(cmd, cfg, f)
		},
	}

	cmd.Flags().StringP("file", "f", "", "Signed transaction JSON file (required)")
	cmd.Flags().Bool("wait", false, "Wait until the transaction is executed")
	cmd.Flags().Uint("attempts", 0, "Status polls with --wait, 0 keeps the default")
	cmd.Flags().Duration("delay", 0, "Delay between status polls with --wait, 0 keeps the default")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runBroadcast(cmd *cobra.Command, cfg Config, f broadcastFlags) error {
	deps := cfg.deps()

	data, err := deps.ReadFile(f.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.file, err)
	}
	tx, err := decodeSigned(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", f.file, err)
	}
	if err = tx.ValidateSigned(); err != nil {
		return fmt.Errorf("invalid signed transaction: %w", err)
	}

	env, err := deps.EnvironmentLoader(cmd.Context(), environment.OptionsFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	bundle := operations.NewBundle(cmd.Context, env.Logger.Named("operations"), operations.NewMemoryReporter())

	out, err := txops.Broadcast(bundle, env.Chain, tx)
	if err != nil {
		return err
	}
	res := broadcastResult{BroadcastOutput: out}

	if f.wait {
		confirmed, err := txops.Confirm(bundle, env.Confirmer, txops.ConfirmInput{
			TxHash:     out.TxHash,
			Attempts:   f.attempts,
			RetryDelay: f.delay,
		})
		res.Status = confirmed.Status
		if err != nil {
			_ = text.JSON(cmd.OutOrStdout(), res)
			return err
		}
	}

	return text.JSON(cmd.OutOrStdout(), res)
}

// decodeSigned accepts a bare transaction or the {"transaction": ...} envelope printed by the
// build commands.
func decodeSigned(data []byte) (multiversx.Transaction, error) {
	var envelope struct {
		Transaction *multiversx.Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return multiversx.Transaction{}, err
	}
	if envelope.Transaction != nil {
		return *envelope.Transaction, nil
	}

	var tx multiversx.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return multiversx.Transaction{}, err
	}

	return tx, nil
}
