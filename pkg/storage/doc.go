// Package storage defines the Store interface used to persist
// exported engine state as opaque blobs.
//
// Stores are deliberately simple key/blob maps: the engine composes
// them through context.Stores and never assumes anything about the
// backend beyond this interface.
//
// Implementations in this repository:
//   - localfs: afero-backed file system store
//   - kv: badger-backed embedded store
//   - mockstorage: configurable fake for tests
package storage
