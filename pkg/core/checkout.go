package core

import (
	"context"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/document"
	"github.com/raybest4u/statemon/pkg/model"

	"go.uber.org/zap"
)

// Checkout resolves a ref and returns the snapshot document at it.
//
// Refs resolve in order: a decimal integer is a direct version lookup;
// a branch name switches the active branch and resolves to its head;
// a tag name resolves to the tagged version without changing the
// active branch.
//
// The stored checksum is re-verified before returning: a mismatch
// fails with ErrIntegrityFailure rather than returning corrupt data.
// The returned document is a defensive copy.
func (e *Engine) Checkout(ctx context.Context, ref string) (_ interface{}, _ uint64, err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "Checkout")(err)
		}
	}(time.Now())

	if v, errParse := strconv.ParseUint(ref, 10, 64); errParse == nil {
		doc, err := e.CheckoutVersion(ctx, v)
		return doc, v, err
	}

	e.mtx.Lock()
	if branch, ok := e.branches[ref]; ok {
		head := branch.CurrentVersion
		if head == 0 {
			// branch exists but has no commit yet: the active branch
			// does not move on a failed checkout
			e.mtx.Unlock()
			return nil, 0, status.ErrNotFound
		}
		e.currentBranch = ref
		e.mtx.Unlock()
		e.l.Info("switched branch on checkout", zap.String("branch", ref), zap.Uint64("head", head))
		doc, err := e.CheckoutVersion(ctx, head)
		return doc, head, err
	}
	e.mtx.Unlock()

	e.mtx.RLock()
	tag, ok := e.tags[ref]
	e.mtx.RUnlock()
	if ok {
		doc, err := e.CheckoutVersion(ctx, tag.Version)
		return doc, tag.Version, err
	}

	return nil, 0, status.ErrNotFound
}

// CheckoutVersion returns the snapshot document at a version number,
// after re-verifying its checksum
func (e *Engine) CheckoutVersion(_ context.Context, version uint64) (interface{}, error) {
	e.mtx.RLock()
	desc, ok := e.versions[version]
	payload, okPayload := e.payloads[version]
	e.mtx.RUnlock()
	if !ok || !okPayload {
		return nil, status.ErrNotFound
	}

	digest, err := e.maker.Process(payload)
	if err != nil {
		return nil, status.ErrIntegrityFailure.Wrap(err)
	}
	if hex.EncodeToString(digest) != desc.Checksum {
		e.l.Error("stored version fails integrity check",
			zap.Uint64("version", version),
			zap.String("expected", desc.Checksum),
			zap.String("actual", hex.EncodeToString(digest)),
		)
		return nil, status.ErrIntegrityFailure
	}
	return document.Clone(payload), nil
}

// Resolve maps a ref to a version number without any side effect:
// unlike Checkout, resolving a branch name does not switch the active
// branch. Resolution order matches Checkout.
func (e *Engine) Resolve(ref string) (uint64, error) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	if v, err := strconv.ParseUint(ref, 10, 64); err == nil {
		if _, ok := e.versions[v]; !ok {
			return 0, status.ErrNotFound
		}
		return v, nil
	}
	if branch, ok := e.branches[ref]; ok {
		if branch.CurrentVersion == 0 {
			return 0, status.ErrNotFound
		}
		return branch.CurrentVersion, nil
	}
	if tag, ok := e.tags[ref]; ok {
		return tag.Version, nil
	}
	return 0, status.ErrNotFound
}

// Version yields the descriptor for a version number
func (e *Engine) Version(version uint64) (model.VersionDescriptor, error) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	desc, ok := e.versions[version]
	if !ok {
		return model.VersionDescriptor{}, status.ErrNotFound
	}
	return desc, nil
}
