// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the step store.
//
// The package exposes a narrow interface (Backend) focused on counters and
// timing data, and a global, pluggable backend that defaults to a no-op
// implementation, so metrics are always safe to call even when no real
// backend is configured. Concrete systems (Prometheus Pushgateway, Datadog)
// live in subpackages.
package metrics

import (
	"fmt"
	"time"
)

// Metric names emitted by the store.
const (
	OpTotal    = "stepstore_op_total"
	OpDuration = "stepstore_op_duration_seconds"
	RowsTotal  = "stepstore_rows_total"
)

// Row kinds reported through RecordRows.
const (
	RowsSaved   = "saved"
	RowsSkipped = "skipped"
	RowsDeleted = "deleted"
	RowsRead    = "read"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend. Call it once during startup, before any store operation runs.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	if err := backend.Flush(); err != nil {
		return fmt.Errorf("metrics: flush: %w", err)
	}
	return nil
}

// RecordOp measures latency and success/failure of one store operation
// ("create_schema", "save", "query", "delete") against a table.
func RecordOp(table, op string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"table":  table,
		"op":     op,
		"status": status,
	}

	backend.IncCounter(OpTotal, 1, lbls)
	backend.ObserveHistogram(OpDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for a table and kind (RowsSaved,
// RowsSkipped, RowsDeleted, RowsRead). Non-positive deltas are ignored.
func RecordRows(table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"table": table,
		"kind":  kind,
	})
}
