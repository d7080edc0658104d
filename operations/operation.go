package operations

import (
	"context"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// Bundle is passed to every OperationHandler. It carries the logger, the reporter that records
// executions and the context getter.
type Bundle struct {
	Logger     logger.Logger
	GetContext func() context.Context
	reporter   Reporter
	// report hashes keyed by definition and JSON input
	reportHashCache *sync.Map
}

// NewBundle returns a Bundle recording into reporter.
func NewBundle(getContext func() context.Context, lggr logger.Logger, reporter Reporter) Bundle {
	return Bundle{
		Logger:          lggr,
		GetContext:      getContext,
		reporter:        reporter,
		reportHashCache: &sync.Map{},
	}
}

// WithContext returns a copy of the Bundle bound to ctx, sharing the reporter.
func (b Bundle) WithContext(ctx context.Context) Bundle {
	b.GetContext = func() context.Context { return ctx }
	return b
}

// Reporter returns the reporter of the Bundle.
func (b Bundle) Reporter() Reporter {
	return b.reporter
}

// OperationHandler performs the side effect of an operation.
type OperationHandler[IN, OUT, DEP any] func(b Bundle, deps DEP, input IN) (output OUT, err error)

// Definition is the metadata of an operation: its ID, version and description.
type Definition struct {
	ID          string          `json:"id"`
	Version     *semver.Version `json:"version"`
	Description string          `json:"description"`
}

// Operation is a single step with at most one side effect, such as broadcasting a
// transaction. Use NewOperation to create one.
type Operation[IN, OUT, DEP any] struct {
	def     Definition
	handler OperationHandler[IN, OUT, DEP]
}

func (o *Operation[IN, OUT, DEP]) ID() string {
	return o.def.ID
}

func (o *Operation[IN, OUT, DEP]) Version() string {
	return o.def.Version.String()
}

func (o *Operation[IN, OUT, DEP]) Description() string {
	return o.def.Description
}

func (o *Operation[IN, OUT, DEP]) Def() Definition {
	return o.def
}

// execute logs and calls the handler. It does not record a report.
func (o *Operation[IN, OUT, DEP]) execute(b Bundle, deps DEP, input IN) (output OUT, err error) {
	b.Logger.Infow("Executing operation",
		"id", o.def.ID, "version", o.def.Version, "description", o.def.Description)

	return o.handler(b, deps, input)
}

// NewOperation defines an operation. Bump version whenever the handler changes what it does,
// so reports of the old behavior are not reused.
func NewOperation[IN, OUT, DEP any](
	id string, version *semver.Version, description string, handler OperationHandler[IN, OUT, DEP],
) *Operation[IN, OUT, DEP] {
	return &Operation[IN, OUT, DEP]{
		def: Definition{
			ID:          id,
			Version:     version,
			Description: description,
		},
		handler: handler,
	}
}
