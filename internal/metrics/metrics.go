// Package metrics is the backend-neutral metrics facade used by the loader.
//
// Core code records counters and histograms through the package-level helpers;
// the process picks a concrete Backend once at startup (SetBackend). Until then
// a no-op backend swallows everything, so library code never has to check
// whether metrics are enabled.
package metrics

import (
	"sync"
	"time"
)

// Metric names understood by backends. Backends ignore names they do not know.
const (
	StepTotal           = "csvload_step_total"
	StepDurationSeconds = "csvload_step_duration_seconds"
	RowsTotal           = "csvload_rows_total"
	StatementsTotal     = "csvload_statements_total"
)

// Labels are metric dimensions (e.g. step=sampling, status=ok).
type Labels map[string]string

// Backend receives metric observations.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend. A nil b restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush asks the current backend to submit buffered observations.
func Flush() error {
	return current().Flush()
}

// IncCounter forwards to the current backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram forwards to the current backend.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// RecordStep counts one completed pipeline step and observes its duration.
// status is "ok" or "error".
func RecordStep(step, status string, d time.Duration) {
	l := Labels{"step": step, "status": status}
	b := current()
	b.IncCounter(StepTotal, 1, l)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), l)
}

// RecordRows counts rows by kind ("sampled", "inserted").
func RecordRows(kind string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"kind": kind})
}

// RecordStatement counts one executed statement by kind ("ddl", "insert") and status.
func RecordStatement(kind, status string) {
	current().IncCounter(StatementsTotal, 1, Labels{"kind": kind, "status": status})
}
