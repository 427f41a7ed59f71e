// Package status exports errors produced by the core package.
package status

import (
	"github.com/raybest4u/statemon/pkg/errors"
)

var (
	// ErrNotFound indicates a version, branch or tag was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a branch or tag name is already taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrLimitExceeded indicates a configured ceiling was reached
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrIntegrityFailure indicates a stored payload no longer matches its checksum.
	// The affected version cannot be trusted; other versions are unaffected.
	ErrIntegrityFailure = errors.New("checksum mismatch on stored version")

	// ErrMergeAborted indicates a merge stopped before committing anything
	ErrMergeAborted = errors.New("merge aborted")

	// ErrCommitFailed indicates a commit failed before any state was recorded
	ErrCommitFailed = errors.New("commit failed")

	// ErrDiffTooLarge indicates a diff exceeded the configured change-count cap
	ErrDiffTooLarge = errors.New("diff too large")

	// ErrBranchProtected indicates an operation was refused on a protected branch
	ErrBranchProtected = errors.New("branch is protected")

	// ErrInterrupted signals that the current background processing has been interrupted
	ErrInterrupted = errors.New("background processing interrupted")
)
