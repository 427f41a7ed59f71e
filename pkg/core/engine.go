// Package core implements the game-state version-control engine.
//
// An Engine snapshots a mutable state document over time, organizes
// snapshots into named branches, supports tagging, computes structural
// diffs and performs three-way merges with caller-supplied conflict
// resolution. A background task prunes history under configured limits.
//
// The engine is an in-process component: one Engine instance owns all
// of its state, several instances may coexist, and durable persistence
// only happens through the explicit Archive and Restore operations.
package core

import (
	"sort"
	"sync"
	"time"

	"github.com/raybest4u/statemon/pkg/fingerprint"
	"github.com/raybest4u/statemon/pkg/metrics"
	"github.com/raybest4u/statemon/pkg/model"

	"go.uber.org/zap"
)

// Engine is a version-control engine over state documents.
//
// All mutating operations serialize behind a single lock: commits,
// branch and tag creation, merges and retention sweeps are atomic from
// the caller's perspective. Reads interleave freely.
type Engine struct {
	metrics.Enable
	m *M

	mtx sync.RWMutex

	versions map[uint64]model.VersionDescriptor
	payloads map[uint64]interface{}
	branches map[string]*model.BranchDescriptor
	tags     map[string]model.TagDescriptor

	versionCounter uint64
	currentBranch  string

	maxVersionsPerBranch int
	enableAutoTagging    bool
	compressionThreshold int64
	cleanupInterval      time.Duration
	maxVersionAge        time.Duration
	maxBranches          int
	defaultBranch        string
	branchProtection     bool
	maxDiffSize          int

	maker *fingerprint.Maker
	clock func() time.Time
	l     *zap.Logger

	stopCleanup chan struct{}
	cleanupWG   sync.WaitGroup
	closeOnce   sync.Once
}

// New creates an engine with its default branch.
//
// The default branch is protected when branch protection is enabled.
// When the cleanup interval is positive, the retention task starts
// immediately; it runs until Close.
func New(opts ...EngineOption) *Engine {
	e := defaultEngine()
	for _, apply := range opts {
		apply(e)
	}

	e.branches[e.defaultBranch] = model.NewBranchDescriptor(e.defaultBranch, 0,
		model.BranchDescription("default branch"),
		model.BranchProtected(e.branchProtection),
		model.BranchTimestamp(e.clock()),
	)
	// no version committed yet
	e.branches[e.defaultBranch].Versions = nil
	e.currentBranch = e.defaultBranch

	if e.MetricsEnabled() {
		e.m = e.EnsureMetrics("core", &M{}).(*M)
	}

	if e.cleanupInterval > 0 {
		e.stopCleanup = make(chan struct{})
		e.cleanupWG.Add(1)
		go e.cleanupLoop()
	}

	e.l.Info("engine ready",
		zap.String("default_branch", e.defaultBranch),
		zap.Duration("cleanup_interval", e.cleanupInterval),
	)
	return e
}

func defaultEngine() *Engine {
	return &Engine{
		versions:             make(map[uint64]model.VersionDescriptor),
		payloads:             make(map[uint64]interface{}),
		branches:             make(map[string]*model.BranchDescriptor),
		tags:                 make(map[string]model.TagDescriptor),
		maxVersionsPerBranch: 50,
		enableAutoTagging:    true,
		compressionThreshold: 10 * 1024,
		cleanupInterval:      5 * time.Minute,
		maxVersionAge:        30 * 24 * time.Hour,
		maxBranches:          10,
		defaultBranch:        "main",
		branchProtection:     true,
		maxDiffSize:          1000,
		maker:                fingerprint.New(),
		clock:                func() time.Time { return time.Now().UTC() },
		l:                    zap.NewNop(),
	}
}

// Close stops the retention task. It is idempotent and safe to call
// on an engine without a running task.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		if e.stopCleanup != nil {
			close(e.stopCleanup)
			e.cleanupWG.Wait()
		}
	})
}

// CurrentBranch yields a copy of the active branch descriptor
func (e *Engine) CurrentBranch() model.BranchDescriptor {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return copyBranch(e.branches[e.currentBranch])
}

// Branches yields all branch descriptors, sorted by name
func (e *Engine) Branches() model.BranchDescriptors {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	out := make(model.BranchDescriptors, 0, len(e.branches))
	for _, b := range e.branches {
		out = append(out, copyBranch(b))
	}
	sort.Sort(out)
	return out
}

// Tags yields all tag descriptors, sorted by name
func (e *Engine) Tags() model.TagDescriptors {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	out := make(model.TagDescriptors, 0, len(e.tags))
	for _, t := range e.tags {
		out = append(out, t)
	}
	sort.Sort(out)
	return out
}

// copyBranch snapshots a branch descriptor, including its version list,
// so callers never hold a reference into engine state
func copyBranch(b *model.BranchDescriptor) model.BranchDescriptor {
	out := *b
	out.Versions = append([]uint64(nil), b.Versions...)
	return out
}
