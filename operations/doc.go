/*
Package operations runs side effecting steps, such as broadcasting a signed transaction, as
versioned operations and records every execution as a Report.

An Operation has a Definition (ID, semver version, description) and a typed handler. Execute
it with ExecuteOperation, optionally with a retry policy:

	op := operations.NewOperation("broadcast-transaction", semver.MustParse("1.0.0"),
		"Broadcast a signed transaction", handler)

	bundle := operations.NewBundle(context.Background, lggr, operations.NewMemoryReporter())
	report, err := operations.ExecuteOperation(bundle, op, deps, input)

A successful report is reused when the same operation runs again with the same input.
*/
package operations
