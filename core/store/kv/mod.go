// Package kv defines the key/value database that backs the host of a node.
//
// The default implementation uses bbolt (https://github.com/etcd-io/bbolt).
// NewStore exposes one bucket of a database as a store.Transactional, so
// that each invocation of the host is a single database transaction.
package kv

// Bucket is a named set of keys inside a database transaction.
type Bucket interface {
	// Get returns the value of the key, or nil if it is missing. The slice is
	// only valid during the transaction.
	Get(key []byte) []byte

	Set(key, value []byte) error

	Delete(key []byte) error
}

// ReadableTx is a read-only database transaction.
type ReadableTx interface {
	// GetBucket returns the bucket, or nil if it was never created.
	GetBucket(name []byte) Bucket
}

// WritableTx is a read-write database transaction.
type WritableTx interface {
	ReadableTx

	// GetBucketOrCreate returns the bucket and creates it when missing.
	GetBucketOrCreate(name []byte) (Bucket, error)
}

// DB is a key/value database with atomic transactions.
type DB interface {
	// View runs the function in a read-only transaction.
	View(fn func(ReadableTx) error) error

	// Update runs the function in a read-write transaction, which is rolled
	// back when the function returns an error.
	Update(fn func(WritableTx) error) error

	// Close releases the database, including the file lock.
	Close() error
}
