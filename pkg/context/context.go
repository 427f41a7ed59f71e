// Package context defines the set of stores an engine archive is
// written to and restored from.
package context

import (
	"github.com/raybest4u/statemon/pkg/storage"
)

// Stores defines a complete persistence context for engine archives.
//
// Metadata holds descriptors (versions, branches, tags, engine state)
// and Payloads holds snapshot documents. Both are opaque byte stores:
// the engine never performs durable I/O outside of them.
type Stores interface {
	// Metadata yields the metadata storage for a context
	Metadata() storage.Store
	// SetMetadata sets the context storage for metadata
	SetMetadata(metadata storage.Store)

	// Payloads yields the snapshot payload storage for a context
	Payloads() storage.Store
	// SetPayloads sets the context storage for snapshot payloads
	SetPayloads(payloads storage.Store)
}

// type safeguard
var _ Stores = &defaultStores{}

// defaultStores is the default implementation of Stores
type defaultStores struct {
	metadata storage.Store
	payloads storage.Store
	_        struct{}
}

// New creates a new empty instance of context stores, to be set with the Setxxx methods.
func New() Stores {
	return &defaultStores{}
}

// NewStores creates a new instance of context stores
func NewStores(metadata, payloads storage.Store) Stores {
	return &defaultStores{metadata: metadata, payloads: payloads}
}

// Metadata yields the metadata storage for a context
func (c *defaultStores) Metadata() storage.Store {
	return c.metadata
}

// SetMetadata sets the context storage for metadata
func (c *defaultStores) SetMetadata(metadata storage.Store) {
	c.metadata = metadata
}

// Payloads yields the snapshot payload storage for a context
func (c *defaultStores) Payloads() storage.Store {
	return c.payloads
}

// SetPayloads sets the context storage for snapshot payloads
func (c *defaultStores) SetPayloads(payloads storage.Store) {
	c.payloads = payloads
}
