// Package store defines the primitives of a simple key/value storage.
//
// A missing key is not an error for Get: it returns a nil value. Callers that
// expect the key to exist report a NotFoundError.
package store

import "fmt"

// Readable is the interface for a readable store.
type Readable interface {
	Get(key []byte) ([]byte, error)
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and write independently. A
// write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}

// Transactional is a store that applies a set of writes atomically. The writes
// of an update are either all committed, when the callback returns nil, or
// none of them.
type Transactional interface {
	// View runs the callback with a read-only view of the last committed
	// state.
	View(fn func(Readable) error) error

	// Update runs the callback with a snapshot on top of the last committed
	// state, and commits the writes only if the callback succeeds.
	Update(fn func(Snapshot) error) error
}

// NotFoundError is returned when a key that must exist is missing from the
// store.
type NotFoundError struct {
	Key string
}

// Error implements error.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Key)
}
