package core

import (
	"context"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/model"

	"go.uber.org/zap"
)

// BranchOption sets options for branch creation
type BranchOption func(*branchSettings)

type branchSettings struct {
	base        *uint64
	description string
	protected   bool
}

// BranchBase forks the new branch from a specific version instead of
// the active branch head
func BranchBase(version uint64) BranchOption {
	return func(s *branchSettings) {
		s.base = &version
	}
}

// BranchDescription sets the description of the new branch
func BranchDescription(description string) BranchOption {
	return func(s *branchSettings) {
		s.description = description
	}
}

// BranchProtected creates the branch protected from pruning and truncation
func BranchProtected(protected bool) BranchOption {
	return func(s *branchSettings) {
		s.protected = protected
	}
}

// CreateBranch creates a named branch forked from a base version.
//
// Without an explicit base, the branch forks from the active branch
// head. Fails with ErrAlreadyExists on a duplicate name,
// ErrLimitExceeded when the branch ceiling is reached, and ErrNotFound
// when the base does not resolve to a committed version.
func (e *Engine) CreateBranch(_ context.Context, name string, opts ...BranchOption) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "CreateBranch")(err)
		}
	}(time.Now())

	if err = model.ValidateBranchName(name); err != nil {
		return err
	}

	var settings branchSettings
	for _, apply := range opts {
		apply(&settings)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if _, ok := e.branches[name]; ok {
		return status.ErrAlreadyExists
	}
	if len(e.branches) >= e.maxBranches {
		return status.ErrLimitExceeded
	}

	base := e.branches[e.currentBranch].CurrentVersion
	if settings.base != nil {
		base = *settings.base
	}
	if _, ok := e.versions[base]; !ok {
		return status.ErrNotFound
	}

	e.branches[name] = model.NewBranchDescriptor(name, base,
		model.BranchDescription(settings.description),
		model.BranchProtected(settings.protected),
		model.BranchTimestamp(e.clock()),
	)

	e.l.Info("created branch",
		zap.String("branch", name),
		zap.Uint64("base", base),
	)
	return nil
}

// SwitchBranch sets the active branch. Pure pointer change: no payload copying.
func (e *Engine) SwitchBranch(name string) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if _, ok := e.branches[name]; !ok {
		return status.ErrNotFound
	}
	e.currentBranch = name
	e.l.Info("switched branch", zap.String("branch", name))
	return nil
}

// DeleteBranch removes a branch pointer.
//
// The active branch, the default branch and protected branches are
// refused. Version data reachable from other branches or tags
// survives; orphaned versions become eligible for pruning.
func (e *Engine) DeleteBranch(_ context.Context, name string) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "DeleteBranch")(err)
		}
	}(time.Now())

	e.mtx.Lock()
	defer e.mtx.Unlock()

	branch, ok := e.branches[name]
	if !ok {
		return status.ErrNotFound
	}
	if name == e.currentBranch || name == e.defaultBranch {
		return status.ErrBranchProtected
	}
	if branch.Protected {
		return status.ErrBranchProtected
	}

	delete(e.branches, name)
	e.pruneOrphansLocked()

	e.l.Info("deleted branch", zap.String("branch", name))
	return nil
}
