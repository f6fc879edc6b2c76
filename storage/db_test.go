package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBBatchAppliesAtomically(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	require.NoError(t, db.Put([]byte("stale"), []byte("x")))

	batch := db.NewBatch()
	batch.Put([]byte("a"), []byte("1"))
	batch.Put([]byte("b"), []byte("2"))
	batch.Delete([]byte("stale"))
	require.Equal(t, 3, batch.Len())

	_, err := db.Get([]byte("a"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, batch.Write())

	got, err := db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)

	ok, err := db.Has([]byte("stale"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLevelDBPersistsBatches(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewLevelDB(dir)
	require.NoError(t, err)

	batch := db1.NewBatch()
	batch.Put([]byte("key"), []byte("value"))
	require.NoError(t, batch.Write())
	db1.Close()

	db2, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	got, err := db2.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)

	_, err = db2.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBoltDBBatchAndReopen(t *testing.T) {
	path := t.TempDir() + "/state.db"

	db1, err := NewBoltDB(path)
	require.NoError(t, err)
	require.NoError(t, db1.Put([]byte("gone"), []byte("x")))

	batch := db1.NewBatch()
	batch.Put([]byte("key"), []byte("value"))
	batch.Delete([]byte("gone"))
	require.NoError(t, batch.Write())
	db1.Close()

	db2, err := NewBoltDB(path)
	require.NoError(t, err)
	defer db2.Close()

	got, err := db2.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), got)

	ok, err := db2.Has([]byte("gone"))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = db2.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	mem, err := Open("memory", dir)
	require.NoError(t, err)
	require.IsType(t, &MemDB{}, mem)

	bolt, err := Open("bolt", dir)
	require.NoError(t, err)
	require.IsType(t, &BoltDB{}, bolt)
	bolt.Close()

	_, err = Open("rocksdb", dir)
	require.Error(t, err)
}
