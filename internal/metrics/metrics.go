// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the ingester.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//
// Concrete metric systems live in subpackages (prompush, datadog) so the
// loader depends only on this package.
package metrics

import "time"

// Metric names recorded by the ingester.
const (
	ChunksTotal          = "ingest_chunks_total"
	RowsTotal            = "ingest_rows_total"
	ChunkDurationSeconds = "ingest_chunk_duration_seconds"
	FilesTotal           = "ingest_files_total"
)

// File outcomes used as the "status" label of FilesTotal.
const (
	StatusDone   = "done"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
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

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordChunk records one written chunk of rows for table and how long it
// took end to end.
func RecordChunk(table string, rows int64, d time.Duration) {
	lbls := Labels{"table": table}
	backend.IncCounter(ChunksTotal, 1, lbls)
	if rows > 0 {
		backend.IncCounter(RowsTotal, float64(rows), lbls)
	}
	backend.ObserveHistogram(ChunkDurationSeconds, d.Seconds(), lbls)
}

// RecordFile counts one finished input file by outcome (StatusDone,
// StatusEmpty or StatusFailed).
func RecordFile(table, status string) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"table":  table,
		"status": status,
	})
}
