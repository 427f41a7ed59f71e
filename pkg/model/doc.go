// Package model describes the data metadata model for statemon.
//
// It contains the descriptors for versions, branches and tags, the
// structural change and merge conflict records, the validation rules
// for object names, and the archive path layout used when an engine
// is exported to storage.
//
// Descriptors are pure data: they marshal to YAML for archives and to
// JSON for CLI output, and carry no behavior beyond sorting and
// validation.
package model
