package model

import (
	"regexp"
	"time"

	"github.com/raybest4u/statemon/pkg/errors"
)

var nameRe = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}\-_]*$`)

// BranchDescriptor represents a named, independently advancing line of versions.
type BranchDescriptor struct {
	Name           string    `json:"name" yaml:"name"`
	BaseVersion    uint64    `json:"baseVersion" yaml:"baseVersion"`
	CurrentVersion uint64    `json:"currentVersion" yaml:"currentVersion"`
	Created        time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	LastUpdate     time.Time `json:"lastUpdate,omitempty" yaml:"lastUpdate,omitempty"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	Protected      bool      `json:"isProtected" yaml:"isProtected"`

	// Versions lists the version numbers reachable on this branch, in
	// commit order. The last element always equals CurrentVersion.
	Versions []uint64 `json:"versions" yaml:"versions"`
	_        struct{}
}

// NewBranchDescriptor builds a new branch descriptor with some options
func NewBranchDescriptor(name string, base uint64, opts ...BranchDescriptorOption) *BranchDescriptor {
	now := time.Now().UTC()
	b := &BranchDescriptor{
		Name:           name,
		BaseVersion:    base,
		CurrentVersion: base,
		Created:        now,
		LastUpdate:     now,
		Versions:       []uint64{base},
	}
	for _, apply := range opts {
		apply(b)
	}
	return b
}

// BranchDescriptorOption is a functor to build a branch descriptor with some options
type BranchDescriptorOption func(descriptor *BranchDescriptor)

// BranchDescription defines the description of a branch descriptor
func BranchDescription(desc string) BranchDescriptorOption {
	return func(b *BranchDescriptor) {
		b.Description = desc
	}
}

// BranchProtected marks a branch descriptor as protected
func BranchProtected(protected bool) BranchDescriptorOption {
	return func(b *BranchDescriptor) {
		b.Protected = protected
	}
}

// BranchTimestamp overrides the creation time of a branch descriptor
func BranchTimestamp(t time.Time) BranchDescriptorOption {
	return func(b *BranchDescriptor) {
		b.Created = t
		b.LastUpdate = t
	}
}

// HasVersion tells whether the given version is reachable on this branch
func (b *BranchDescriptor) HasVersion(version uint64) bool {
	for _, v := range b.Versions {
		if v == version {
			return true
		}
	}
	return false
}

// ValidateBranchName verifies that a name is usable as a branch name:
// it must start with a letter or digit and contain only letters,
// digits, hyphens and underscores.
func ValidateBranchName(name string) error {
	if name == "" {
		return errors.New("branch name is required")
	}
	if !nameRe.MatchString(name) {
		return errors.New("branch names must start with a letter or digit and contain only letters, digits, '-' and '_'")
	}
	return nil
}

// BranchDescriptors is a sortable collection of branch descriptors, ordered by name
type BranchDescriptors []BranchDescriptor

func (b BranchDescriptors) Len() int {
	return len(b)
}

func (b BranchDescriptors) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}

func (b BranchDescriptors) Less(i, j int) bool {
	return b[i].Name < b[j].Name
}
