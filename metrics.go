package spectral

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordFit is called after each codec training, with the code
	// length, training row count and total fit time.
	RecordFit(bits, rows int, duration time.Duration, err error)

	// RecordEncode is called after each batch encode.
	RecordEncode(rows int, duration time.Duration, err error)

	// RecordEvaluate is called after each evaluation (mAP + PR curve).
	RecordEvaluate(queries int, duration time.Duration, err error)

	// RecordCheckpoint is called after each checkpoint write.
	RecordCheckpoint(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordEncode(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordEvaluate(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCheckpoint(time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount        atomic.Int64
	FitErrors       atomic.Int64
	FitRows         atomic.Int64
	FitTotalNanos   atomic.Int64
	EncodeCount     atomic.Int64
	EncodeErrors    atomic.Int64
	EncodeRows      atomic.Int64
	EncodeNanos     atomic.Int64
	EvaluateCount   atomic.Int64
	EvaluateErrors  atomic.Int64
	EvaluateQueries atomic.Int64
	EvaluateNanos   atomic.Int64
	CheckpointCount atomic.Int64
	CheckpointErrs  atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(bits, rows int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitRows.Add(int64(rows))
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(rows int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeRows.Add(int64(rows))
	b.EncodeNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(queries int, duration time.Duration, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateQueries.Add(int64(queries))
	b.EvaluateNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvaluateErrors.Add(1)
	}
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(duration time.Duration, err error) {
	b.CheckpointCount.Add(1)
	if err != nil {
		b.CheckpointErrs.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:        b.FitCount.Load(),
		FitErrors:       b.FitErrors.Load(),
		FitRows:         b.FitRows.Load(),
		FitAvgNanos:     avgNanos(b.FitTotalNanos.Load(), b.FitCount.Load()),
		EncodeCount:     b.EncodeCount.Load(),
		EncodeErrors:    b.EncodeErrors.Load(),
		EncodeRows:      b.EncodeRows.Load(),
		EncodeAvgNanos:  avgNanos(b.EncodeNanos.Load(), b.EncodeCount.Load()),
		EvaluateCount:   b.EvaluateCount.Load(),
		EvaluateErrors:  b.EvaluateErrors.Load(),
		EvaluateQueries: b.EvaluateQueries.Load(),
		CheckpointCount: b.CheckpointCount.Load(),
		CheckpointErrs:  b.CheckpointErrs.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FitCount        int64
	FitErrors       int64
	FitRows         int64
	FitAvgNanos     int64
	EncodeCount     int64
	EncodeErrors    int64
	EncodeRows      int64
	EncodeAvgNanos  int64
	EvaluateCount   int64
	EvaluateErrors  int64
	EvaluateQueries int64
	CheckpointCount int64
	CheckpointErrs  int64
}
