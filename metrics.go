package measgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    appendCounter   prometheus.Counter
//	    exportHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordAppend(duration time.Duration, err error) {
//	    p.appendCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordAppend is called after each admitted record append.
	// duration is the total time taken, err is nil if successful.
	RecordAppend(duration time.Duration, err error)

	// RecordReject is called for each record rejected by the filter stage.
	RecordReject()

	// RecordMalformed is called for each frame that failed to parse or
	// failed its checksum.
	RecordMalformed()

	// RecordProject is called after each matrix or vector projection.
	// rows is the number of projected rows, err is nil if successful.
	RecordProject(rows int, duration time.Duration, err error)

	// RecordExport is called after each interchange export.
	// count is the number of records written.
	RecordExport(count int, duration time.Duration, err error)

	// RecordImport is called after each interchange import.
	// count is the number of records read.
	RecordImport(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(time.Duration, error)       {}
func (NoopMetricsCollector) RecordReject()                           {}
func (NoopMetricsCollector) RecordMalformed()                        {}
func (NoopMetricsCollector) RecordProject(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordExport(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordImport(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendTotalNanos atomic.Int64
	RejectCount      atomic.Int64
	MalformedCount   atomic.Int64
	ProjectCount     atomic.Int64
	ProjectErrors    atomic.Int64
	ProjectRows      atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ExportRecords    atomic.Int64
	ImportCount      atomic.Int64
	ImportErrors     atomic.Int64
	ImportRecords    atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// RecordReject implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReject() {
	b.RejectCount.Add(1)
}

// RecordMalformed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMalformed() {
	b.MalformedCount.Add(1)
}

// RecordProject implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProject(rows int, duration time.Duration, err error) {
	b.ProjectCount.Add(1)
	b.ProjectRows.Add(int64(rows))
	if err != nil {
		b.ProjectErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(count int, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportRecords.Add(int64(count))
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// RecordImport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImport(count int, duration time.Duration, err error) {
	b.ImportCount.Add(1)
	b.ImportRecords.Add(int64(count))
	if err != nil {
		b.ImportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AppendCount:    b.AppendCount.Load(),
		AppendErrors:   b.AppendErrors.Load(),
		AppendAvgNanos: b.getAvgAppendNanos(),
		RejectCount:    b.RejectCount.Load(),
		MalformedCount: b.MalformedCount.Load(),
		ProjectCount:   b.ProjectCount.Load(),
		ProjectErrors:  b.ProjectErrors.Load(),
		ProjectRows:    b.ProjectRows.Load(),
		ExportCount:    b.ExportCount.Load(),
		ExportErrors:   b.ExportErrors.Load(),
		ExportRecords:  b.ExportRecords.Load(),
		ImportCount:    b.ImportCount.Load(),
		ImportErrors:   b.ImportErrors.Load(),
		ImportRecords:  b.ImportRecords.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAppendNanos() int64 {
	count := b.AppendCount.Load()
	if count == 0 {
		return 0
	}
	return b.AppendTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount    int64
	AppendErrors   int64
	AppendAvgNanos int64
	RejectCount    int64
	MalformedCount int64
	ProjectCount   int64
	ProjectErrors  int64
	ProjectRows    int64
	ExportCount    int64
	ExportErrors   int64
	ExportRecords  int64
	ImportCount    int64
	ImportErrors   int64
	ImportRecords  int64
}
