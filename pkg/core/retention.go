package core

import (
	"context"
	"time"

	"github.com/raybest4u/statemon/pkg/model"

	"go.uber.org/zap"
)

// cleanupLoop drives the background retention task until Close
func (e *Engine) cleanupLoop() {
	defer e.cleanupWG.Done()
	ticker := time.NewTicker(e.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCleanup:
			return
		case <-ticker.C:
			if err := e.Cleanup(context.Background()); err != nil {
				e.l.Warn("retention sweep failed", zap.Error(err))
			}
		}
	}
}

// Cleanup runs one retention sweep.
//
// Two independent prunings happen: per-branch history truncation over
// the configured maximum, and age-based pruning of versions and
// automated tags over the configured age. Both are best-effort: a
// branch head is never removed, nor is a version referenced by a user
// tag or carrying the protected descriptor tag.
//
// The background task calls the same sweep on its ticker; callers may
// also trigger it manually.
func (e *Engine) Cleanup(_ context.Context) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "Cleanup")(err)
		}
	}(time.Now())

	e.mtx.Lock()
	defer e.mtx.Unlock()

	for _, branch := range e.branches {
		e.truncateBranchLocked(branch)
	}
	e.pruneByAgeLocked()
	pruned := e.pruneOrphansLocked()

	if e.MetricsEnabled() {
		e.m.Volume.Snapshots.Pruned(pruned, "cleanup")
	}
	return nil
}

// pruneByAgeLocked removes versions and automated tags older than the
// configured age threshold
func (e *Engine) pruneByAgeLocked() {
	cutoff := e.clock().Add(-e.maxVersionAge)

	heads := make(map[uint64]struct{}, len(e.branches))
	for _, branch := range e.branches {
		heads[branch.CurrentVersion] = struct{}{}
	}
	userTagged := make(map[uint64]struct{}, len(e.tags))
	for _, tag := range e.tags {
		if !tag.Automated {
			userTagged[tag.Version] = struct{}{}
		}
	}

	for version, desc := range e.versions {
		if !desc.Timestamp.Before(cutoff) {
			continue
		}
		if desc.HasTag(model.ReservedTagProtected) {
			continue
		}
		if _, ok := heads[version]; ok {
			continue
		}
		if _, ok := userTagged[version]; ok {
			continue
		}
		e.dropVersionLocked(version, "age")
	}

	// automated tags go when stale, or when their version just did:
	// an age-pruned version never leaves a dangling automated tag behind
	for name, tag := range e.tags {
		if !tag.Automated {
			continue
		}
		_, alive := e.versions[tag.Version]
		if alive && !tag.Created.Before(cutoff) {
			continue
		}
		delete(e.tags, name)
		e.l.Debug("pruned automated tag", zap.String("tag", name))
	}
}

// pruneOrphansLocked removes version data no longer reachable from any
// branch, tag or protection rule. Returns the number of versions removed.
func (e *Engine) pruneOrphansLocked() int {
	referenced := make(map[uint64]struct{}, len(e.versions))
	for _, branch := range e.branches {
		referenced[branch.CurrentVersion] = struct{}{}
		for _, v := range branch.Versions {
			referenced[v] = struct{}{}
		}
	}
	for _, tag := range e.tags {
		referenced[tag.Version] = struct{}{}
	}

	pruned := 0
	for version, desc := range e.versions {
		if _, ok := referenced[version]; ok {
			continue
		}
		if desc.HasTag(model.ReservedTagProtected) {
			continue
		}
		e.dropVersionLocked(version, "orphan")
		pruned++
	}
	return pruned
}

// dropVersionLocked removes one version's metadata and payload, and
// scrubs it from branch history lists (never from a head position)
func (e *Engine) dropVersionLocked(version uint64, reason string) {
	delete(e.versions, version)
	delete(e.payloads, version)
	for _, branch := range e.branches {
		for i, v := range branch.Versions {
			if v != version {
				continue
			}
			branch.Versions = append(branch.Versions[:i], branch.Versions[i+1:]...)
			break
		}
	}
	e.l.Debug("pruned version",
		zap.Uint64("version", version),
		zap.String("reason", reason),
	)
}
