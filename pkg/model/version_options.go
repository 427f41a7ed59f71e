package model

import "time"

// VersionDescriptorOption is a functor to build a version descriptor with some options
type VersionDescriptorOption func(descriptor *VersionDescriptor)

// VersionID defines the unique ID of a version descriptor
func VersionID(id string) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.ID = id
	}
}

// Message defines the commit message of a version descriptor
func Message(m string) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.Message = m
	}
}

// Parent defines the parent version of a version descriptor
func Parent(p uint64) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.ParentVersion = &p
	}
}

// Branch defines the branch a version descriptor was committed on
func Branch(name string) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.BranchName = name
	}
}

// VersionContributor defines the contributor of a version descriptor
func VersionContributor(c Contributor) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.Contributor = c
	}
}

// VersionTags defines the initial tags of a version descriptor
func VersionTags(tags ...string) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.Tags = append(v.Tags, tags...)
	}
}

// Checksum defines the payload digest of a version descriptor
func Checksum(digest string) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.Checksum = digest
	}
}

// Size defines the canonical payload size of a version descriptor
func Size(size int64) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.Size = size
	}
}

// VersionTimestamp overrides the commit time of a version descriptor
func VersionTimestamp(t time.Time) VersionDescriptorOption {
	return func(v *VersionDescriptor) {
		v.Timestamp = t
	}
}
