package operations

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Report records one execution of an operation: its definition, input, output and error.
type Report[IN, OUT any] struct {
	ID        string       `json:"id"`
	Def       Definition   `json:"definition"`
	Output    OUT          `json:"output"`
	Input     IN           `json:"input"`
	Timestamp *time.Time   `json:"timestamp"`
	Err       *ReportError `json:"error"`
	// Forced is set when the run ignored a previous successful report for the same input.
	Forced bool `json:"forced,omitempty"`
}

// NewReport creates a report with a new uuid and the current time.
func NewReport[IN, OUT any](def Definition, input IN, output OUT, err error) Report[IN, OUT] {
	now := time.Now()
	r := Report[IN, OUT]{
		ID:        uuid.New().String(),
		Def:       def,
		Output:    output,
		Input:     input,
		Timestamp: &now,
	}
	if err != nil {
		r.Err = &ReportError{Message: err.Error()}
	}

	return r
}

// ToGenericReport erases the input and output types so the report can be stored by a Reporter.
func (r Report[IN, OUT]) ToGenericReport() Report[any, any] {
	return Report[any, any]{
		ID:        r.ID,
		Def:       r.Def,
		Output:    r.Output,
		Input:     r.Input,
		Timestamp: r.Timestamp,
		Err:       r.Err,
		Forced:    r.Forced,
	}
}

// Succeeded reports whether the operation returned no error.
func (r Report[IN, OUT]) Succeeded() bool {
	return r.Err == nil
}

// ReportError is the JSON friendly form of the error returned by an operation.
type ReportError struct {
	Message string `json:"message"`
}

func (o ReportError) Error() string {
	return o.Message
}

var ErrReportNotFound = errors.New("report not found")

// Reporter stores reports.
type Reporter interface {
	GetReport(id string) (Report[any, any], error)
	GetReports() ([]Report[any, any], error)
	AddReport(report Report[any, any]) error
}

// MemoryReporter keeps reports in memory, oldest first. Reports are lost on restart. It is safe
// for concurrent use.
type MemoryReporter struct {
	mu         sync.RWMutex
	reports    []Report[any, any]
	maxReports int
}

type MemoryReporterOption func(*MemoryReporter)

// WithMaxReports bounds the number of reports kept; the oldest are dropped first.
func WithMaxReports(n int) MemoryReporterOption {
	return func(mr *MemoryReporter) {
		mr.maxReports = n
	}
}

func NewMemoryReporter(options ...MemoryReporterOption) *MemoryReporter {
	reporter := &MemoryReporter{}
	for _, opt := range options {
		opt(reporter)
	}

	return reporter
}

func (e *MemoryReporter) AddReport(report Report[any, any]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, report)
	if e.maxReports > 0 && len(e.reports) > e.maxReports {
		e.reports = slices.Clone(e.reports[len(e.reports)-e.maxReports:])
	}

	return nil
}

// GetReports returns a copy of all reports, oldest first.
func (e *MemoryReporter) GetReports() ([]Report[any, any], error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return slices.Clone(e.reports), nil
}

// GetReport returns ErrReportNotFound for unknown or evicted ids.
func (e *MemoryReporter) GetReport(id string) (Report[any, any], error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i := slices.IndexFunc(e.reports, func(r Report[any, any]) bool { return r.ID == id })
	if i < 0 {
		return Report[any, any]{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
	}

	return e.reports[i], nil
}

// Recent returns up to n reports, newest first.
func (e *MemoryReporter) Recent(n int) []Report[any, any] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n = min(n, len(e.reports))
	out := make([]Report[any, any], 0, n)
	for i := len(e.reports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, e.reports[i])
	}

	return out
}

// typeReport converts a stored report back to its typed form. Stored values may be maps and
// float64s, so they are converted through JSON.
func typeReport[IN, OUT any](r Report[any, any]) (Report[IN, OUT], bool) {
	input, ok := convert[IN](r.Input)
	if !ok {
		return Report[IN, OUT]{}, false
	}
	output, ok := convert[OUT](r.Output)
	if !ok {
		return Report[IN, OUT]{}, false
	}

	return Report[IN, OUT]{
		ID:        r.ID,
		Def:       r.Def,
		Output:    output,
		Input:     input,
		Timestamp: r.Timestamp,
		Err:       r.Err,
		Forced:    r.Forced,
	}, true
}

func convert[T any](v any) (T, bool) {
	var out T
	if typed, ok := v.(T); ok {
		return typed, true
	}

	data, err := json.Marshal(v)
	if err != nil {
		return out, false
	}
	if err = json.Unmarshal(data, &out); err != nil {
		return out, false
	}

	return out, true
}
