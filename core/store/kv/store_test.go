package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/oracle/core/store"
	"go.dedis.ch/oracle/internal/testing/fake"
)

func TestBucketStore_View(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	s := NewStore(db, []byte("state"))

	// The bucket does not exist yet.
	err = s.View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)

	snap := bucketSnapshot{}
	require.EqualError(t, snap.Set([]byte("A"), nil), "read-only snapshot")
	require.EqualError(t, snap.Delete([]byte("A")), "read-only snapshot")
}

func TestBucketStore_Update(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	defer db.Close()

	s := NewStore(db, []byte("state"))

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("A"), []byte{1}))
		require.NoError(t, snap.Set([]byte("B"), []byte{2}))
		require.NoError(t, snap.Delete([]byte("B")))

		return nil
	})
	require.NoError(t, err)

	err = s.Update(func(snap store.Snapshot) error {
		require.NoError(t, snap.Set([]byte("A"), []byte{3}))

		return fake.GetError()
	})
	require.Equal(t, fake.GetError(), err)

	var value []byte

	err = s.View(func(r store.Readable) error {
		value, err = r.Get([]byte("A"))
		require.NoError(t, err)

		b, err := r.Get([]byte("B"))
		require.NoError(t, err)
		require.Nil(t, b)

		return nil
	})
	require.NoError(t, err)

	// The value is still valid outside of the transaction.
	require.Equal(t, []byte{1}, value)
}

func TestBucketStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path)
	require.NoError(t, err)

	err = NewStore(db, []byte("state")).Update(func(snap store.Snapshot) error {
		return snap.Set([]byte("A"), []byte{1})
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)

	defer db.Close()

	err = NewStore(db, []byte("state")).View(func(r store.Readable) error {
		value, err := r.Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte{1}, value)

		return nil
	})
	require.NoError(t, err)
}
