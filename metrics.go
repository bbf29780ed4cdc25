package kmeans

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package metrics/prometheus).
type MetricsCollector interface {
	// RecordSeed is called after centroid seeding.
	RecordSeed(duration time.Duration)

	// RecordIteration is called after each assign/recompute iteration.
	// moved is the number of points that changed cluster in the iteration.
	RecordIteration(iteration, moved int, duration time.Duration)

	// RecordRun is called once per Run. err is nil if successful; term is
	// empty when the run failed.
	RecordRun(iterations int, term Termination, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSeed(time.Duration)                         {}
func (NoopMetricsCollector) RecordIteration(int, int, time.Duration)          {}
func (NoopMetricsCollector) RecordRun(int, Termination, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SeedCount      atomic.Int64
	SeedTotalNanos atomic.Int64
	IterationCount atomic.Int64
	IterationNanos atomic.Int64
	Reassigned     atomic.Int64
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	RunTotalNanos  atomic.Int64
	ConvergedRuns  atomic.Int64
	ExhaustedRuns  atomic.Int64
}

// RecordSeed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSeed(duration time.Duration) {
	b.SeedCount.Add(1)
	b.SeedTotalNanos.Add(duration.Nanoseconds())
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(_ int, moved int, duration time.Duration) {
	b.IterationCount.Add(1)
	b.IterationNanos.Add(duration.Nanoseconds())
	b.Reassigned.Add(int64(moved))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, term Termination, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	switch term {
	case Converged:
		b.ConvergedRuns.Add(1)
	case Exhausted:
		b.ExhaustedRuns.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SeedCount:         b.SeedCount.Load(),
		SeedAvgNanos:      avg(b.SeedTotalNanos.Load(), b.SeedCount.Load()),
		IterationCount:    b.IterationCount.Load(),
		IterationAvgNanos: avg(b.IterationNanos.Load(), b.IterationCount.Load()),
		Reassigned:        b.Reassigned.Load(),
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
		RunAvgNanos:       avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		ConvergedRuns:     b.ConvergedRuns.Load(),
		ExhaustedRuns:     b.ExhaustedRuns.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SeedCount         int64
	SeedAvgNanos      int64
	IterationCount    int64
	IterationAvgNanos int64
	Reassigned        int64
	RunCount          int64
	RunErrors         int64
	RunAvgNanos       int64
	ConvergedRuns     int64
	ExhaustedRuns     int64
}
