package core

import (
	"github.com/raybest4u/statemon/pkg/metrics"
)

// M describes metrics for the core package
type M struct {
	Volume struct {
		Snapshots metrics.SnapshotMetrics `group:"snapshots" description:"metrics about committed snapshots"`
	} `group:"volumetry" description:""`
	Usage metrics.UsageMetrics `group:"telemetry" description:"usage stats for the core package"`
}
