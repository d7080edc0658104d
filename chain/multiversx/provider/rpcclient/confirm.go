package rpcclient

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// Transaction statuses reported by the gateway status route.
const (
	TxStatusPending = "pending"
	TxStatusSuccess = "success"
	TxStatusFail    = "fail"
	TxStatusInvalid = "invalid"
)

// confirmConfig defines the configuration for confirming transactions.
type confirmConfig struct {
	// RetryAttempts sets a fixed number of attempts for confirming transactions.
	RetryAttempts uint
	// RetryDelay is the duration to wait between retry attempts.
	RetryDelay time.Duration
}

// ConfirmRetryOpts returns the retry options for confirming transactions.
func (c *confirmConfig) ConfirmRetryOpts(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.RetryAttempts),
		retry.Delay(c.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
}

// confirmConfigDefault polls for roughly one minute.
var confirmConfigDefault = confirmConfig{
	RetryAttempts: 60,
	RetryDelay:    time.Second,
}

// ConfirmOpt is a functional option type that allows for configuring Confirm operations.
type ConfirmOpt func(*confirmConfig)

// WithConfirmRetry sets the number of retry attempts and the delay between retries for confirming
// transactions. A zero value keeps the current setting.
func WithConfirmRetry(attempts uint, delay time.Duration) ConfirmOpt {
	return func(config *confirmConfig) {
		if delay > 0 {
			config.RetryDelay = delay
		}
		if attempts > 0 {
			config.RetryAttempts = attempts
		}
	}
}

// ConfirmTx polls the transaction status until it is executed, retrying while it is pending.
// A failed or invalid transaction stops the polling immediately.
func (mc *MultiClient) ConfirmTx(ctx context.Context, txHash string, opts ...ConfirmOpt) (string, error) {
	config := confirmConfigDefault
	for _, opt := range opts {
		opt(&config)
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 1
	}

	var status string
	err := retry.Do(func() error {
		var err error
		status, err = mc.TransactionStatus(ctx, txHash)
		if err != nil {
			return fmt.Errorf("error fetching transaction status: %w", err)
		}

		switch status {
		case TxStatusSuccess:
			return nil
		case TxStatusFail, TxStatusInvalid:
			return retry.Unrecoverable(fmt.Errorf("transaction %s failed, status: %s", txHash, status))
		default:
			return fmt.Errorf("transaction %s is not yet confirmed, status: %q", txHash, status)
		}
	}, config.ConfirmRetryOpts(ctx)...)
	if err != nil {
		return status, fmt.Errorf("error confirming transaction: %w", err)
	}

	return status, nil
}
