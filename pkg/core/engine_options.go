package core

import (
	"time"

	"github.com/raybest4u/statemon/pkg/fingerprint"

	"go.uber.org/zap"
)

// EngineOption sets construction-time options on an engine
type EngineOption func(*Engine)

// MaxVersionsPerBranch caps the history list of unprotected branches.
// Exceeding commits truncate the oldest entries. The default is 50.
func MaxVersionsPerBranch(max int) EngineOption {
	return func(e *Engine) {
		if max > 0 {
			e.maxVersionsPerBranch = max
		}
	}
}

// EnableAutoTagging toggles commit-time heuristic tags (round
// milestones, game-end, bankruptcy, weekend saves). Enabled by default.
func EnableAutoTagging(enabled bool) EngineOption {
	return func(e *Engine) {
		e.enableAutoTagging = enabled
	}
}

// CompressionThreshold sets the payload size in bytes above which
// archived payloads are compressed. Advisory: only Archive consumes it.
func CompressionThreshold(threshold int64) EngineOption {
	return func(e *Engine) {
		if threshold > 0 {
			e.compressionThreshold = threshold
		}
	}
}

// CleanupInterval sets the retention task period. Zero disables the
// background task; Cleanup may still be invoked manually.
func CleanupInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.cleanupInterval = d
	}
}

// MaxVersionAge sets the age beyond which unreferenced versions and
// automated tags are pruned. The default is 30 days.
func MaxVersionAge(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.maxVersionAge = d
		}
	}
}

// MaxBranches caps the number of branches. The default is 10.
func MaxBranches(max int) EngineOption {
	return func(e *Engine) {
		if max > 0 {
			e.maxBranches = max
		}
	}
}

// DefaultBranch names the branch created at engine startup. The default is "main".
func DefaultBranch(name string) EngineOption {
	return func(e *Engine) {
		if name != "" {
			e.defaultBranch = name
		}
	}
}

// WithBranchProtection protects the default branch from pruning. Enabled by default.
func WithBranchProtection(enabled bool) EngineOption {
	return func(e *Engine) {
		e.branchProtection = enabled
	}
}

// MaxDiffSize caps the number of changes a version diff may report
// before it is rejected as pathological. The default is 1000.
func MaxDiffSize(max int) EngineOption {
	return func(e *Engine) {
		if max > 0 {
			e.maxDiffSize = max
		}
	}
}

// Logger sets the zap logger used by the engine. The default is a nop logger.
func Logger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// WithMetrics toggles metrics collection on this engine
func WithMetrics(enabled bool) EngineOption {
	return func(e *Engine) {
		e.EnableMetrics(enabled)
	}
}

// Fingerprinter overrides the digest maker used to checksum payloads
func Fingerprinter(maker *fingerprint.Maker) EngineOption {
	return func(e *Engine) {
		if maker != nil {
			e.maker = maker
		}
	}
}

// Clock overrides the engine time source (used by tests)
func Clock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}
