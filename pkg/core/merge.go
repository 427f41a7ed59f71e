package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/document"
	"github.com/raybest4u/statemon/pkg/model"

	"go.uber.org/zap"
)

// ConflictResolver settles merge conflicts on behalf of the caller.
//
// It receives every conflicting path with its base, source and target
// values, and returns a mapping from path to resolved value. Paths
// absent from the returned mapping are left unresolved: the target
// branch value stands, and the path is reported in
// MergeResult.Unresolved. A resolver error aborts the merge without
// committing.
type ConflictResolver func(ctx context.Context, conflicts []model.MergeConflict) (map[string]interface{}, error)

// mergeInput is the immutable snapshot a merge computes against,
// captured under the read lock
type mergeInput struct {
	sourceHead uint64
	targetHead uint64
	ancestor   uint64
}

// Merge performs a three-way merge of the source branch into the
// target branch and commits the result on the target.
//
// The common ancestor is found by scanning the target branch history
// newest to oldest for a version also on the source branch, falling
// back to the smaller of the two branch base versions. Changes made on
// the source since the ancestor are applied onto the target head;
// paths changed by both sides to different values are conflicts handed
// to the resolver.
//
// A node removed on one side while the other side changed something
// beneath it conflicts on the removed path, with the whole subtree at
// stake: unresolved, the target side of that path stands like any
// other conflict.
//
// The merge commit carries author "system". A missing branch or
// version aborts with no partial commit.
func (e *Engine) Merge(ctx context.Context, source, target string, resolver ConflictResolver) (_ model.MergeResult, err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "Merge")(err)
		}
	}(time.Now())

	in, err := e.mergeInput(source, target)
	if err != nil {
		return model.MergeResult{}, err
	}

	ancestorDoc, err := e.CheckoutVersion(ctx, in.ancestor)
	if err != nil {
		return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
	}
	sourceDoc, err := e.CheckoutVersion(ctx, in.sourceHead)
	if err != nil {
		return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
	}
	targetDoc, err := e.CheckoutVersion(ctx, in.targetHead)
	if err != nil {
		return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
	}

	sourceChanges := Diff(ancestorDoc, sourceDoc)
	targetChanges := Diff(ancestorDoc, targetDoc)

	conflicts := detectConflicts(ancestorDoc, sourceDoc, targetDoc, sourceChanges, targetChanges)

	resolutions := map[string]interface{}{}
	if len(conflicts) > 0 && resolver != nil {
		resolutions, err = resolver(ctx, append([]model.MergeConflict(nil), conflicts...))
		if err != nil {
			return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
		}
	}

	merged := document.Clone(targetDoc)
	conflicted := make(map[string]struct{}, len(conflicts))
	for _, c := range conflicts {
		conflicted[c.Path] = struct{}{}
	}

	// non-conflicting source changes apply onto the target head; changes
	// at or beneath a conflicted path await the conflict's resolution
	for _, change := range sourceChanges {
		if _, ok := conflicted[change.Path]; ok {
			continue
		}
		if underConflict(change.Path, conflicted) {
			continue
		}
		merged, err = applyChange(merged, change)
		if err != nil {
			return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
		}
	}

	unresolved := make([]string, 0, len(conflicts))
	for i, c := range conflicts {
		value, ok := resolutions[c.Path]
		if !ok {
			// target wins when the caller declines to resolve
			conflicts[i].Resolution = model.ResolutionNone
			unresolved = append(unresolved, c.Path)
			continue
		}
		conflicts[i].Resolution = model.ResolutionManual
		conflicts[i].ResolvedValue = value
		merged, err = document.Set(merged, c.Path, document.Clone(value))
		if err != nil {
			return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
		}
	}

	message := fmt.Sprintf("Merged branch '%s' into '%s'", source, target)
	merged = document.Normalize(merged)
	canonical, err := document.CanonicalBytes(merged)
	if err != nil {
		return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
	}
	digest, err := e.maker.Process(merged)
	if err != nil {
		return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
	}

	e.mtx.Lock()
	version, err := e.commitLocked(target, merged, canonical, digest, commitSettings{
		message:     message,
		contributor: model.Contributor{Name: "system"},
	})
	e.mtx.Unlock()
	if err != nil {
		return model.MergeResult{}, status.ErrMergeAborted.Wrap(err)
	}

	e.l.Info("merged branches",
		zap.String("source", source),
		zap.String("target", target),
		zap.Uint64("ancestor", in.ancestor),
		zap.Uint64("version", version),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("unresolved", len(unresolved)),
	)

	return model.MergeResult{
		Version:    version,
		Conflicts:  conflicts,
		Unresolved: unresolved,
		Changes:    Diff(targetDoc, merged),
		Message:    message,
	}, nil
}

// mergeInput resolves both branch heads and their common ancestor
func (e *Engine) mergeInput(source, target string) (mergeInput, error) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	sourceBranch, ok := e.branches[source]
	if !ok {
		return mergeInput{}, status.ErrNotFound.Wrap(fmt.Errorf("source branch %q", source))
	}
	targetBranch, ok := e.branches[target]
	if !ok {
		return mergeInput{}, status.ErrNotFound.Wrap(fmt.Errorf("target branch %q", target))
	}

	ancestor, ok := commonAncestor(sourceBranch, targetBranch)
	if !ok {
		return mergeInput{}, status.ErrMergeAborted.Wrap(fmt.Errorf("no common ancestor between %q and %q", source, target))
	}
	return mergeInput{
		sourceHead: sourceBranch.CurrentVersion,
		targetHead: targetBranch.CurrentVersion,
		ancestor:   ancestor,
	}, nil
}

// commonAncestor scans the target history newest to oldest for a
// version also reachable on the source branch, falling back to the
// smaller of the two branch bases.
//
// This is an approximation suited to linear per-branch histories, not
// a DAG walk: truncated or rewritten histories may yield an older
// ancestor than a true LCA search would.
func commonAncestor(source, target *model.BranchDescriptor) (uint64, bool) {
	for i := len(target.Versions) - 1; i >= 0; i-- {
		if source.HasVersion(target.Versions[i]) {
			return target.Versions[i], true
		}
	}
	base := source.BaseVersion
	if target.BaseVersion < base {
		base = target.BaseVersion
	}
	return base, base != 0
}

// detectConflicts finds paths changed by both sides to different
// values, and nodes removed by one side while the other side changed
// something beneath them
func detectConflicts(ancestor, sourceDoc, targetDoc interface{}, sourceChanges, targetChanges []model.Change) []model.MergeConflict {
	targetByPath := make(map[string]model.Change, len(targetChanges))
	for _, c := range targetChanges {
		targetByPath[c.Path] = c
	}

	conflicts := make([]model.MergeConflict, 0, 4)
	seen := make(map[string]struct{}, 4)
	record := func(c model.MergeConflict) {
		if _, ok := seen[c.Path]; ok {
			return
		}
		seen[c.Path] = struct{}{}
		conflicts = append(conflicts, c)
	}

	for _, sc := range sourceChanges {
		tc, ok := targetByPath[sc.Path]
		if !ok {
			continue
		}
		if document.Equal(sc.NewValue, tc.NewValue) {
			// both sides agree
			continue
		}
		base, _ := document.Get(ancestor, sc.Path)
		record(model.MergeConflict{
			Path:        sc.Path,
			BaseValue:   base,
			SourceValue: sc.NewValue,
			TargetValue: tc.NewValue,
		})
	}

	// target removed a node the source changed beneath: conflict on the
	// removed path, the source subtree against the removal
	for _, tc := range targetChanges {
		if tc.Type != model.ChangeRemove {
			continue
		}
		for _, sc := range sourceChanges {
			if !underPath(sc.Path, tc.Path) {
				continue
			}
			base, _ := document.Get(ancestor, tc.Path)
			sourceValue, _ := document.Get(sourceDoc, tc.Path)
			record(model.MergeConflict{
				Path:        tc.Path,
				BaseValue:   base,
				SourceValue: sourceValue,
			})
			break
		}
	}

	// the mirror case: source removed a node the target changed beneath
	for _, sc := range sourceChanges {
		if sc.Type != model.ChangeRemove {
			continue
		}
		for _, tc := range targetChanges {
			if !underPath(tc.Path, sc.Path) {
				continue
			}
			base, _ := document.Get(ancestor, sc.Path)
			targetValue, _ := document.Get(targetDoc, sc.Path)
			record(model.MergeConflict{
				Path:        sc.Path,
				BaseValue:   base,
				TargetValue: targetValue,
			})
			break
		}
	}
	return conflicts
}

// underPath tells whether path lies strictly beneath parent
func underPath(path, parent string) bool {
	return strings.HasPrefix(path, parent+".")
}

// underConflict tells whether a path lies beneath any conflicted path
func underConflict(path string, conflicted map[string]struct{}) bool {
	for parent := range conflicted {
		if underPath(path, parent) {
			return true
		}
	}
	return false
}

// applyChange replays one change onto a document
func applyChange(doc interface{}, change model.Change) (interface{}, error) {
	switch change.Type {
	case model.ChangeRemove:
		return document.Delete(doc, change.Path)
	default:
		return document.Set(doc, change.Path, document.Clone(change.NewValue))
	}
}
