package kv

import (
	"go.dedis.ch/oracle/core/store"
	"golang.org/x/xerrors"
)

// bucketStore exposes a single bucket of a database as a transactional store.
// Each update is a database transaction.
//
// - implements store.Transactional
type bucketStore struct {
	db     DB
	bucket []byte
}

// NewStore returns a transactional store backed by the bucket of the
// database. The bucket is created on the first update.
func NewStore(db DB, bucket []byte) store.Transactional {
	return bucketStore{
		db:     db,
		bucket: append([]byte{}, bucket...),
	}
}

// View implements store.Transactional. A bucket that does not exist yet is
// read as an empty one.
func (s bucketStore) View(fn func(store.Readable) error) error {
	return s.db.View(func(txn ReadableTx) error {
		return fn(bucketSnapshot{bucket: txn.GetBucket(s.bucket)})
	})
}

// Update implements store.Transactional. The database transaction is rolled
// back if the callback returns an error.
func (s bucketStore) Update(fn func(store.Snapshot) error) error {
	return s.db.Update(func(txn WritableTx) error {
		bucket, err := txn.GetBucketOrCreate(s.bucket)
		if err != nil {
			return xerrors.Errorf("failed to open bucket: %v", err)
		}

		return fn(bucketSnapshot{bucket: bucket})
	})
}

// bucketSnapshot is a snapshot over a bucket within a database transaction.
// The values are copied as the memory of the database is only valid during the
// transaction.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// Get implements store.Readable.
func (s bucketSnapshot) Get(key []byte) ([]byte, error) {
	if s.bucket == nil {
		return nil, nil
	}

	value := s.bucket.Get(key)
	if value == nil {
		return nil, nil
	}

	return append([]byte{}, value...), nil
}

// Set implements store.Writable.
func (s bucketSnapshot) Set(key, value []byte) error {
	if s.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	return s.bucket.Set(key, value)
}

// Delete implements store.Writable.
func (s bucketSnapshot) Delete(key []byte) error {
	if s.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	return s.bucket.Delete(key)
}
