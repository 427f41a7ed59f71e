package core

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/document"
	"github.com/raybest4u/statemon/pkg/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommitOption sets options for a single commit
type CommitOption func(*commitSettings)

type commitSettings struct {
	message     string
	contributor model.Contributor
	tags        []string
}

// CommitMessage sets the commit message
func CommitMessage(message string) CommitOption {
	return func(s *commitSettings) {
		s.message = message
	}
}

// CommitContributor sets the commit author
func CommitContributor(c model.Contributor) CommitOption {
	return func(s *commitSettings) {
		s.contributor = c
	}
}

// CommitTags requests tags to be materialized on the new version.
// Tag name collisions are reported in logs but do not fail the commit.
func CommitTags(tags ...string) CommitOption {
	return func(s *commitSettings) {
		s.tags = append(s.tags, tags...)
	}
}

// Commit snapshots a state document on the active branch and returns
// the new version number.
//
// The document is deep-copied into the store, checksummed, and the
// branch head advances, all atomically: a failing commit leaves no
// partial state behind. Committing may truncate the oldest entries of
// an unprotected branch over its configured history maximum.
func (e *Engine) Commit(ctx context.Context, doc interface{}, opts ...CommitOption) (_ uint64, err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "Commit")(err)
		}
	}(time.Now())

	var settings commitSettings
	for _, apply := range opts {
		apply(&settings)
	}

	// documents are stored in their JSON-typed form so that checksums
	// survive an archive round-trip
	doc = document.Normalize(doc)

	// fingerprint before taking the write lock: hashing dominates commit cost
	canonical, err := document.CanonicalBytes(doc)
	if err != nil {
		return 0, status.ErrCommitFailed.Wrap(err)
	}
	digest, err := e.maker.Process(doc)
	if err != nil {
		return 0, status.ErrCommitFailed.Wrap(err)
	}

	select {
	case <-ctx.Done():
		return 0, status.ErrCommitFailed.Wrap(ctx.Err())
	default:
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.commitLocked(e.currentBranch, doc, canonical, digest, settings)
}

// commitLocked records a new version on the named branch. The write
// lock must be held: metadata, payload, branch head and tags all
// become visible together.
func (e *Engine) commitLocked(branchName string, doc interface{}, canonical, digest []byte, settings commitSettings) (uint64, error) {
	branch, ok := e.branches[branchName]
	if !ok {
		return 0, status.ErrCommitFailed.Wrap(status.ErrNotFound)
	}

	now := e.clock()
	version := e.versionCounter + 1

	descOpts := []model.VersionDescriptorOption{
		model.VersionID(uuid.New().String()),
		model.Branch(branch.Name),
		model.Message(settings.message),
		model.VersionContributor(settings.contributor),
		model.Checksum(hex.EncodeToString(digest)),
		model.Size(int64(len(canonical))),
		model.VersionTimestamp(now),
	}
	if branch.CurrentVersion != 0 {
		descOpts = append(descOpts, model.Parent(branch.CurrentVersion))
	}
	desc := model.NewVersionDescriptor(version, descOpts...)
	desc.Tags = append(desc.Tags, settings.tags...)
	var automated []string
	if e.enableAutoTagging {
		automated = e.autoTags(doc, desc.Tags, now)
		desc.Tags = append(desc.Tags, automated...)
	}

	if err := desc.Validate(); err != nil {
		return 0, status.ErrCommitFailed.Wrap(err)
	}

	// point of no return: all maps update together under the lock.
	// the document was normalized into a private copy upstream.
	e.versionCounter = version
	e.versions[version] = *desc
	e.payloads[version] = doc

	branch.CurrentVersion = version
	branch.LastUpdate = now
	branch.Versions = append(branch.Versions, version)
	e.truncateBranchLocked(branch)

	for _, tagName := range settings.tags {
		if er := e.createTagLocked(tagName, version, "", false, now); er != nil {
			e.l.Warn("requested tag not materialized",
				zap.String("tag", tagName),
				zap.Uint64("version", version),
				zap.Error(er),
			)
		}
	}
	for _, tagName := range automated {
		// heuristic tag names recur (e.g. every weekend save): the
		// record keeps pointing at the first version that earned it
		if er := e.createTagLocked(tagName, version, "commit-time heuristic", true, now); er != nil {
			e.l.Debug("automated tag not materialized",
				zap.String("tag", tagName),
				zap.Uint64("version", version),
				zap.Error(er),
			)
		}
	}

	e.pruneOrphansLocked()

	if e.MetricsEnabled() {
		e.m.Volume.Snapshots.Inc("commit")
		e.m.Volume.Snapshots.Size(desc.Size, "commit")
	}
	e.l.Info("committed version",
		zap.Uint64("version", version),
		zap.String("branch", branch.Name),
		zap.Int64("size", desc.Size),
		zap.Strings("tags", desc.Tags),
	)
	return version, nil
}

// truncateBranchLocked enforces the per-branch history maximum.
// Protected branches are exempt. The branch head is never truncated.
func (e *Engine) truncateBranchLocked(branch *model.BranchDescriptor) {
	if branch.Protected || len(branch.Versions) <= e.maxVersionsPerBranch {
		return
	}
	excess := len(branch.Versions) - e.maxVersionsPerBranch
	dropped := append([]uint64(nil), branch.Versions[:excess]...)
	branch.Versions = append(branch.Versions[:0], branch.Versions[excess:]...)
	e.l.Debug("truncated branch history",
		zap.String("branch", branch.Name),
		zap.Uint64s("dropped", dropped),
	)
}
