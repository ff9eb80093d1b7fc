// Package mem implements an in-memory transactional store.
//
// The writes of an update are staged in a child layer that only reads through
// to its parent. The layer is merged into the committed state once the update
// succeeds, and simply dropped otherwise.
package mem

import (
	"sync"

	"go.dedis.ch/oracle/core/store"
)

// item is a value of a layer. A deleted item hides the value of the parent.
type item struct {
	value   []byte
	deleted bool
}

// Layer is a set of writes on top of an optional parent layer.
//
// - implements store.Snapshot
type Layer struct {
	parent *Layer
	store  map[string]item
}

// NewLayer returns an empty layer without parent.
func NewLayer() *Layer {
	return &Layer{
		store: make(map[string]item),
	}
}

// Get implements store.Readable. It returns the value of the key by following
// the parents, or nil if the key is not set.
func (l *Layer) Get(key []byte) ([]byte, error) {
	it, found := l.store[string(key)]
	if found {
		if it.deleted {
			return nil, nil
		}

		return copyBytes(it.value), nil
	}

	if l.parent == nil {
		return nil, nil
	}

	return l.parent.Get(key)
}

// Set implements store.Writable.
func (l *Layer) Set(key, value []byte) error {
	l.store[string(key)] = item{value: copyBytes(value)}

	return nil
}

// Delete implements store.Writable.
func (l *Layer) Delete(key []byte) error {
	l.store[string(key)] = item{deleted: true}

	return nil
}

// Len returns the number of keys set in the layer and its parents.
func (l *Layer) Len() int {
	keys := map[string]struct{}{}
	l.collect(keys)

	return len(keys)
}

func (l *Layer) collect(keys map[string]struct{}) {
	if l.parent != nil {
		l.parent.collect(keys)
	}

	for k, it := range l.store {
		if it.deleted {
			delete(keys, k)
		} else {
			keys[k] = struct{}{}
		}
	}
}

func (l *Layer) makeChild() *Layer {
	return &Layer{
		parent: l,
		store:  make(map[string]item),
	}
}

// merge applies the writes of the child to the layer. Deleted items are
// removed as the layer is the root.
func (l *Layer) merge(child *Layer) {
	for k, it := range child.store {
		if it.deleted {
			delete(l.store, k)
		} else {
			l.store[k] = it
		}
	}
}

// Store is an in-memory store where updates are atomic.
//
// - implements store.Transactional
type Store struct {
	sync.RWMutex

	root *Layer
}

// NewStore returns a new empty store.
func NewStore() *Store {
	return &Store{
		root: NewLayer(),
	}
}

// View implements store.Transactional.
func (s *Store) View(fn func(store.Readable) error) error {
	s.RLock()
	defer s.RUnlock()

	return fn(s.root)
}

// Update implements store.Transactional. The writes are staged in a child
// layer which is merged only if the callback returns nil.
func (s *Store) Update(fn func(store.Snapshot) error) error {
	s.Lock()
	defer s.Unlock()

	child := s.root.makeChild()

	err := fn(child)
	if err != nil {
		return err
	}

	s.root.merge(child)

	return nil
}

// Len returns the number of keys committed to the store.
func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()

	return s.root.Len()
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	res := make([]byte, len(b))
	copy(res, b)

	return res
}
