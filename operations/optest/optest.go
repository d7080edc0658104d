// Package optest provides utilities for operations testing.
package optest

import (
	"testing"

	"github.com/chainballotx/chainballotx-dashboard/operations"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// NewBundle creates a new operations bundle for testing with a test logger and a memory
// reporter.
func NewBundle(t *testing.T) operations.Bundle {
	t.Helper()

	return operations.NewBundle(t.Context, logger.Test(t), operations.NewMemoryReporter())
}
