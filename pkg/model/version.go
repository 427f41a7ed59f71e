package model

import (
	"fmt"
	"time"

	"github.com/raybest4u/statemon/pkg/errors"
)

// ReservedTagProtected marks a version as exempt from age-based pruning.
//
// It is a descriptor tag, not a Tag record: it travels with the version.
const ReservedTagProtected = "protected"

// VersionDescriptor represents a committed snapshot of the state document.
//
// Descriptors are immutable once committed: retention may delete them,
// nothing ever updates them.
type VersionDescriptor struct {
	ID            string      `json:"id" yaml:"id"`
	Version       uint64      `json:"version" yaml:"version"`
	ParentVersion *uint64     `json:"parentVersion,omitempty" yaml:"parentVersion,omitempty"`
	BranchName    string      `json:"branchName" yaml:"branchName"`
	Timestamp     time.Time   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Contributor   Contributor `json:"contributor" yaml:"contributor"`
	Message       string      `json:"message" yaml:"message"`
	Checksum      string      `json:"checksum" yaml:"checksum"`
	Size          int64       `json:"size" yaml:"size"`
	Tags          []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	_             struct{}
}

// Contributor who committed the version
type Contributor struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	_     struct{}
}

func (c *Contributor) String() string {
	if c.Email == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Email
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}

// NewVersionDescriptor builds a new version descriptor with some options
func NewVersionDescriptor(version uint64, opts ...VersionDescriptorOption) *VersionDescriptor {
	v := &VersionDescriptor{
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
	for _, apply := range opts {
		apply(v)
	}
	return v
}

// HasTag tells whether the descriptor carries the given tag
func (v *VersionDescriptor) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate the version descriptor
func (v *VersionDescriptor) Validate() error {
	if v.Version == 0 {
		return errors.New("version number must be set")
	}
	if v.Checksum == "" {
		return errors.New("version checksum must be set")
	}
	if v.BranchName == "" {
		return errors.New("version branch must be set")
	}
	return nil
}

// VersionDescriptors is a sortable collection of version descriptors,
// ordered newest-first
type VersionDescriptors []VersionDescriptor

func (v VersionDescriptors) Len() int {
	return len(v)
}

func (v VersionDescriptors) Swap(i, j int) {
	v[i], v[j] = v[j], v[i]
}

func (v VersionDescriptors) Less(i, j int) bool {
	return v[i].Version > v[j].Version
}

// Last yields the oldest version in the collection
func (v VersionDescriptors) Last() VersionDescriptor {
	return v[len(v)-1]
}
