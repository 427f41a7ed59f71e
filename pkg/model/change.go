package model

import (
	"time"
)

// ChangeType qualifies one entry in a structural diff
type ChangeType string

const (
	// ChangeAdd records a path present only in the newer document
	ChangeAdd ChangeType = "add"

	// ChangeRemove records a path present only in the older document
	ChangeRemove ChangeType = "remove"

	// ChangeModify records a path whose value differs between documents
	ChangeModify ChangeType = "modify"
)

// Change is one field-level difference between two state documents.
//
// Path is the dot-joined sequence of keys from the document root, with
// sequence elements addressed by decimal index.
type Change struct {
	Type      ChangeType  `json:"type" yaml:"type"`
	Path      string      `json:"path" yaml:"path"`
	OldValue  interface{} `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue  interface{} `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Reason    string      `json:"reason,omitempty" yaml:"reason,omitempty"`
	_         struct{}
}

// ConflictResolution qualifies how a merge conflict was settled
type ConflictResolution string

const (
	// ResolutionNone means the conflict was left unresolved: the target value stands
	ResolutionNone ConflictResolution = "none"

	// ResolutionSource means the source branch value was kept
	ResolutionSource ConflictResolution = "source"

	// ResolutionTarget means the target branch value was kept
	ResolutionTarget ConflictResolution = "target"

	// ResolutionManual means a caller-supplied value was applied
	ResolutionManual ConflictResolution = "manual"
)

// MergeConflict records a path changed differently by both sides of a merge
type MergeConflict struct {
	Path          string             `json:"path" yaml:"path"`
	BaseValue     interface{}        `json:"baseValue,omitempty" yaml:"baseValue,omitempty"`
	SourceValue   interface{}        `json:"sourceValue,omitempty" yaml:"sourceValue,omitempty"`
	TargetValue   interface{}        `json:"targetValue,omitempty" yaml:"targetValue,omitempty"`
	Resolution    ConflictResolution `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	ResolvedValue interface{}        `json:"resolvedValue,omitempty" yaml:"resolvedValue,omitempty"`
	_             struct{}
}

// MergeResult reports the outcome of merging one branch into another
type MergeResult struct {
	// Version is the merge commit on the target branch
	Version uint64 `json:"version" yaml:"version"`

	// Conflicts lists every conflicting path, with its resolution when one was supplied
	Conflicts []MergeConflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`

	// Unresolved lists the conflicting paths the resolver declined to
	// settle: those keep the target branch value in the merge commit
	Unresolved []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`

	// Changes is the diff of the target head before and after the merge
	Changes []Change `json:"changes,omitempty" yaml:"changes,omitempty"`

	Message string `json:"message" yaml:"message"`
	_       struct{}
}
