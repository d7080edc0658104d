// Package txops wraps transaction broadcast and confirmation as reported operations.
package txops

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx/provider/rpcclient"
	"github.com/chainballotx/chainballotx-dashboard/operations"
)

// Confirmer polls a transaction until it is executed. It is implemented by
// rpcclient.MultiClient.
type Confirmer interface {
	ConfirmTx(ctx context.Context, txHash string, opts ...rpcclient.ConfirmOpt) (string, error)
}

var _ Confirmer = (*rpcclient.MultiClient)(nil)

// BroadcastDeps are the dependencies of OpBroadcastTransaction.
type BroadcastDeps struct {
	Chain *multiversx.Chain
}

// BroadcastOutput is the result of a broadcast.
type BroadcastOutput struct {
	TxHash      string `json:"txHash"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// OpBroadcastTransaction validates a signed transaction and sends it through the gateway.
var OpBroadcastTransaction = operations.NewOperation(
	"broadcast-transaction",
	semver.MustParse("1.0.0"),
	"Broadcast a wallet signed transaction",
	func(b operations.Bundle, deps BroadcastDeps, tx multiversx.Transaction) (BroadcastOutput, error) {
		if deps.Chain == nil || deps.Chain.Client == nil {
			return BroadcastOutput{}, operations.NewUnrecoverableError(errors.New("chain client is not configured"))
		}
		if err := tx.ValidateSigned(); err != nil {
			return BroadcastOutput{}, operations.NewUnrecoverableError(fmt.Errorf("invalid signed transaction: %w", err))
		}
		if tx.ChainID != deps.Chain.ChainID {
			return BroadcastOutput{}, operations.NewUnrecoverableError(
				fmt.Errorf("transaction chain ID %q does not match network %s", tx.ChainID, deps.Chain))
		}

		hash, err := deps.Chain.Client.SendTransaction(b.GetContext(), tx)
		if err != nil {
			err = fmt.Errorf("failed to send transaction: %w", err)
			// the gateway rejected the transaction itself
			var gerr *rpcclient.GatewayError
			if errors.As(err, &gerr) && gerr.StatusCode < http.StatusInternalServerError {
				return BroadcastOutput{}, operations.NewUnrecoverableError(err)
			}

			return BroadcastOutput{}, err
		}
		b.Logger.Infow("Transaction broadcast", "txHash", hash, "sender", tx.Sender, "data", tx.DataString())

		return BroadcastOutput{TxHash: hash, ExplorerURL: deps.Chain.ExplorerTxURL(hash)}, nil
	},
)

// ConfirmDeps are the dependencies of OpConfirmTransaction.
type ConfirmDeps struct {
	Confirmer Confirmer
}

// ConfirmInput selects the transaction to wait for.
type ConfirmInput struct {
	TxHash     string        `json:"txHash"`
	Attempts   uint          `json:"attempts,omitempty"`
	RetryDelay time.Duration `json:"retryDelay,omitempty"`
}

// ConfirmOutput is the final status of a transaction.
type ConfirmOutput struct {
	TxHash string `json:"txHash"`
	Status string `json:"status"`
}

// OpConfirmTransaction waits until a broadcast transaction is executed.
var OpConfirmTransaction = operations.NewOperation(
	"confirm-transaction",
	semver.MustParse("1.0.0"),
	"Wait for a transaction to be executed",
	func(b operations.Bundle, deps ConfirmDeps, input ConfirmInput) (ConfirmOutput, error) {
		if deps.Confirmer == nil {
			return ConfirmOutput{}, operations.NewUnrecoverableError(errors.New("confirmer is not configured"))
		}
		if input.TxHash == "" {
			return ConfirmOutput{}, operations.NewUnrecoverableError(errors.New("transaction hash is required"))
		}

		var opts []rpcclient.ConfirmOpt
		if input.Attempts > 0 {
			opts = append(opts, rpcclient.WithConfirmRetry(input.Attempts, input.RetryDelay))
		}

		status, err := deps.Confirmer.ConfirmTx(b.GetContext(), input.TxHash, opts...)
		if err != nil {
			// ConfirmTx already retried
			return ConfirmOutput{TxHash: input.TxHash, Status: status}, operations.NewUnrecoverableError(err)
		}
		b.Logger.Infow("Transaction executed", "txHash", input.TxHash, "status", status)

		return ConfirmOutput{TxHash: input.TxHash, Status: status}, nil
	},
)

// Broadcast runs OpBroadcastTransaction, retrying gateway failures a few times.
func Broadcast(b operations.Bundle, chain *multiversx.Chain, tx multiversx.Transaction) (BroadcastOutput, error) {
	report, err := operations.ExecuteOperation(b, OpBroadcastTransaction, BroadcastDeps{Chain: chain}, tx,
		operations.WithRetry(operations.RetryPolicy{MaxAttempts: 3, Delay: time.Second}),
	)

	return report.Output, err
}

// Confirm runs OpConfirmTransaction.
func Confirm(b operations.Bundle, confirmer Confirmer, input ConfirmInput) (ConfirmOutput, error) {
	report, err := operations.ExecuteOperation(b, OpConfirmTransaction, ConfirmDeps{Confirmer: confirmer}, input)

	return report.Output, err
}
