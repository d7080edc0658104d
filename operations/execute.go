package operations

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

var ErrNotSerializable = errors.New("data cannot be safely written to a report without data loss, " +
	"avoid types that can't be serialized")

// RetryPolicy controls how a failed operation is retried.
type RetryPolicy struct {
	MaxAttempts uint
	// Delay between attempts. Zero keeps the retry-go exponential backoff default.
	Delay time.Duration
	// FixedDelay disables the backoff.
	FixedDelay bool
}

// DefaultRetryPolicy is used by WithRetry when no policy is given.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 10}

// options returns the 'avast/retry' functional options for the retry policy.
func (p RetryPolicy) options() []retry.Option {
	opts := []retry.Option{
		retry.Attempts(max(p.MaxAttempts, 1)),
		retry.LastErrorOnly(true),
	}
	if p.Delay > 0 {
		opts = append(opts, retry.Delay(p.Delay))
	}
	if p.FixedDelay {
		opts = append(opts, retry.DelayType(retry.FixedDelay))
	}

	return opts
}

type executeConfig struct {
	retry *RetryPolicy
	force bool
}

// ExecuteOption configures a single ExecuteOperation call.
type ExecuteOption func(*executeConfig)

// WithRetry retries a failed operation with policy, or DefaultRetryPolicy when policy is the
// zero value.
func WithRetry(policy RetryPolicy) ExecuteOption {
	return func(c *executeConfig) {
		if policy == (RetryPolicy{}) {
			policy = DefaultRetryPolicy
		}
		c.retry = &policy
	}
}

// WithForceExecute runs the operation even when a previous successful report exists for the
// same input.
func WithForceExecute() ExecuteOption {
	return func(c *executeConfig) {
		c.force = true
	}
}

// ExecuteOperation executes an operation with the given input and dependencies and records a
// Report.
//
// A previous successful report for the same definition and input is returned without running
// the handler again, so a signed transaction submitted twice is only broadcast once. Failed
// runs are never reused.
//
// Retries are disabled unless WithRetry is given. Return NewUnrecoverableError from the handler
// to stop retrying early. Input and output must be JSON serializable.
func ExecuteOperation[IN, OUT, DEP any](
	b Bundle,
	operation *Operation[IN, OUT, DEP],
	deps DEP,
	input IN,
	opts ...ExecuteOption,
) (Report[IN, OUT], error) {
	if !IsSerializable(b.Logger, input) {
		return Report[IN, OUT]{}, fmt.Errorf("operation %s input: %w", operation.def.ID, ErrNotSerializable)
	}

	var cfg executeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.force {
		if prev, found := findSuccessfulReport[IN, OUT](b, operation.def, input); found {
			b.Logger.Infow("Operation already executed, returning previous result",
				"id", operation.def.ID, "version", operation.def.Version, "report_id", prev.ID)

			return prev, nil
		}
	}

	run := func() (OUT, error) {
		return operation.execute(b, deps, input)
	}

	var (
		output OUT
		err    error
	)
	if cfg.retry != nil {
		retryOpts := append(cfg.retry.options(),
			retry.Context(b.GetContext()),
			retry.OnRetry(func(attempt uint, err error) {
				b.Logger.Warnw("Operation failed, retrying", "id", operation.def.ID, "attempt", attempt, "error", err)
			}),
		)
		output, err = retry.DoWithData(run, retryOpts...)
	} else {
		output, err = run()
	}

	if err == nil && !IsSerializable(b.Logger, output) {
		return Report[IN, OUT]{}, fmt.Errorf("operation %s output: %w", operation.def.ID, ErrNotSerializable)
	}

	report := NewReport(operation.def, input, output, err)
	report.Forced = cfg.force
	if addErr := b.reporter.AddReport(report.ToGenericReport()); addErr != nil {
		return Report[IN, OUT]{}, addErr
	}
	if report.Err != nil {
		return report, report.Err
	}

	return report, nil
}

// NewUnrecoverableError wraps err so that a retried operation stops immediately.
func NewUnrecoverableError(err error) error {
	return retry.Unrecoverable(err)
}

// findSuccessfulReport looks up the newest successful report with the same definition and input.
func findSuccessfulReport[IN, OUT any](b Bundle, def Definition, input IN) (Report[IN, OUT], bool) {
	want, err := constructUniqueHashFrom(b.reportHashCache, def, input)
	if err != nil {
		b.Logger.Errorw("Failed to hash operation input", "id", def.ID, "error", err)
		return Report[IN, OUT]{}, false
	}

	reports, err := b.reporter.GetReports()
	if err != nil {
		b.Logger.Errorw("Failed to get reports", "error", err)
		return Report[IN, OUT]{}, false
	}

	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		if r.Err != nil {
			continue
		}
		got, err := constructUniqueHashFrom(b.reportHashCache, r.Def, r.Input)
		if err != nil || got != want {
			continue
		}
		typed, ok := typeReport[IN, OUT](r)
		if !ok {
			b.Logger.Debugw("Previous execution found with mismatching types", "id", def.ID, "report_id", r.ID)
			continue
		}

		return typed, true
	}

	return Report[IN, OUT]{}, false
}
