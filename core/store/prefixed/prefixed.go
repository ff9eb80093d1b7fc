// Package prefixed scopes the keys of a store to a namespace, so that several
// contract instances can share the same store without seeing each other's
// keys.
package prefixed

import (
	"crypto/sha256"
	"encoding/binary"

	"go.dedis.ch/oracle/core/store"
)

// snapshot hashes every key with the namespace before it reaches the parent
// store. The writable part is nil for a read-only view.
//
// - implements store.Snapshot
type snapshot struct {
	parent store.Readable
	writer store.Writable
	prefix []byte
}

// NewSnapshot returns a snapshot of the namespace inside the parent snapshot.
func NewSnapshot(prefix string, parent store.Snapshot) store.Snapshot {
	return snapshot{
		parent: parent,
		writer: parent,
		prefix: []byte(prefix),
	}
}

// NewReadable returns a read-only view of the namespace.
func NewReadable(prefix string, parent store.Readable) store.Readable {
	return snapshot{
		parent: parent,
		prefix: []byte(prefix),
	}
}

// Get implements store.Readable.
func (s snapshot) Get(key []byte) ([]byte, error) {
	return s.parent.Get(NewPrefixedKey(s.prefix, key))
}

// Set implements store.Writable.
func (s snapshot) Set(key, value []byte) error {
	return s.writer.Set(NewPrefixedKey(s.prefix, key), value)
}

// Delete implements store.Writable.
func (s snapshot) Delete(key []byte) error {
	return s.writer.Delete(NewPrefixedKey(s.prefix, key))
}

// NewPrefixedKey returns the 32 bytes key of the pair. Both parts are length
// prefixed so that ("ab", "c") and ("a", "bc") differ.
func NewPrefixedKey(prefix, key []byte) []byte {
	h := sha256.New()

	var length [4]byte

	binary.BigEndian.PutUint32(length[:], uint32(len(prefix)))
	h.Write(length[:])
	h.Write(prefix)

	binary.BigEndian.PutUint32(length[:], uint32(len(key)))
	h.Write(length[:])
	h.Write(key)

	return h.Sum(nil)
}
