package model

import (
	"time"

	"github.com/raybest4u/statemon/pkg/errors"
)

// TagDescriptor represents a named alias to one specific version.
//
// A tag is analogous to tags in git. Examples: game-end, round-10.
type TagDescriptor struct {
	Name        string    `json:"name" yaml:"name"`
	Version     uint64    `json:"version" yaml:"version"`
	Created     time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`

	// Automated tags are produced by commit-time heuristics and may be
	// pruned by age. User tags are never age-pruned.
	Automated bool `json:"isAutomated" yaml:"isAutomated"`
	_         struct{}
}

// NewTagDescriptor builds a new tag descriptor with some options
func NewTagDescriptor(name string, version uint64, opts ...TagDescriptorOption) *TagDescriptor {
	t := &TagDescriptor{
		Name:    name,
		Version: version,
		Created: time.Now().UTC(),
	}
	for _, apply := range opts {
		apply(t)
	}
	return t
}

// TagDescriptorOption is a functor to build a tag descriptor with some options
type TagDescriptorOption func(descriptor *TagDescriptor)

// TagDescription defines the description of a tag descriptor
func TagDescription(desc string) TagDescriptorOption {
	return func(t *TagDescriptor) {
		t.Description = desc
	}
}

// TagAutomated marks a tag descriptor as system-generated
func TagAutomated(automated bool) TagDescriptorOption {
	return func(t *TagDescriptor) {
		t.Automated = automated
	}
}

// TagTimestamp overrides the creation time of a tag descriptor
func TagTimestamp(ts time.Time) TagDescriptorOption {
	return func(t *TagDescriptor) {
		t.Created = ts
	}
}

// ValidateTagName verifies that a name is usable as a tag name.
// Tag names follow the same rules as branch names.
func ValidateTagName(name string) error {
	if name == "" {
		return errors.New("tag name is required")
	}
	if !nameRe.MatchString(name) {
		return errors.New("tag names must start with a letter or digit and contain only letters, digits, '-' and '_'")
	}
	return nil
}

// TagDescriptors is a sortable collection of tag descriptors, ordered by name
type TagDescriptors []TagDescriptor

func (t TagDescriptors) Len() int {
	return len(t)
}

func (t TagDescriptors) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}

func (t TagDescriptors) Less(i, j int) bool {
	return t[i].Name < t[j].Name
}
