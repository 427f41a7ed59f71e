package metrics

import (
	"time"

	"go.opencensus.io/stats"
)

// UsageMetrics is a common set of metrics reporting about usage
type UsageMetrics struct {
	Count    *stats.Int64Measure   `metric:"usageCount" description:"number of calls" tags:"kind,method"`
	Failures *stats.Int64Measure   `metric:"usageFailures" description:"number of failed calls" tags:"kind,method"`
	Timing   *stats.Float64Measure `metric:"timing" unit:"milliseconds" description:"duration of a call" tags:"kind,method"`
}

func (u *UsageMetrics) tags(method string) map[string]string {
	return map[string]string{"kind": "usage", "method": method}
}

// Inc records the usage of some method, without timings or failure reporting
func (u *UsageMetrics) Inc(method string) {
	Inc(u.Count, u.tags(method))
}

// Failed records a failure on some instrumented entry point
func (u *UsageMetrics) Failed(method string) {
	Inc(u.Failures, u.tags(method))
}

// UsedAll records usage of some instrumented entry point with failures, in one go.
//
// Example:
//
//	func (e *Engine) MyInstrumentedFunc() (err error) {
//	  defer func(start time.Time) {
//	    e.m.Usage.UsedAll(start, "MyInstrumentedFunc")(err)
//	  }(time.Now())
//	  ...
//	}
func (u *UsageMetrics) UsedAll(start time.Time, method string) func(error) {
	return func(err error) {
		Since(start, u.Timing, u.tags(method))
		Inc(u.Count, u.tags(method))
		if err != nil {
			Inc(u.Failures, u.tags(method))
		}
	}
}

// SnapshotMetrics is a common set of metrics reporting about committed snapshots
type SnapshotMetrics struct {
	SnapshotCount *stats.Int64Measure `metric:"snapshotCount" description:"number of snapshots" extraviews:"sum" tags:"kind,operation"`
	SnapshotSize  *stats.Int64Measure `metric:"snapshotSize" unit:"bytes" description:"canonical size of snapshots" extraviews:"sum" tags:"kind,operation"`
	PrunedCount   *stats.Int64Measure `metric:"prunedCount" description:"number of snapshots removed by retention" extraviews:"sum" tags:"kind,operation"`
}

func (f *SnapshotMetrics) tags(operation string) map[string]string {
	return map[string]string{"kind": "snapshot", "operation": operation}
}

// Inc increments the counter for snapshots
func (f *SnapshotMetrics) Inc(operation string) {
	Inc(f.SnapshotCount, f.tags(operation))
}

// Size measures the canonical size of a snapshot
func (f *SnapshotMetrics) Size(size int64, operation string) {
	Int64(f.SnapshotSize, size, f.tags(operation))
}

// Pruned counts snapshots removed by a retention sweep
func (f *SnapshotMetrics) Pruned(count int, operation string) {
	if count == 0 {
		return
	}
	Int64(f.PrunedCount, int64(count), f.tags(operation))
}
