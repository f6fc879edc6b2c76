package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"milkchain/storage"
)

type record struct {
	Name  string
	Count uint64
}

func TestSnapshotRevertRestoresPriorValues(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)

	require.NoError(t, mgr.KVPut([]byte("a"), &record{Name: "first", Count: 1}))
	snap := mgr.Snapshot()

	require.NoError(t, mgr.KVPut([]byte("a"), &record{Name: "second", Count: 2}))
	require.NoError(t, mgr.KVPut([]byte("b"), &record{Name: "new", Count: 3}))
	require.NoError(t, mgr.KVDelete([]byte("a")))

	require.NoError(t, mgr.RevertToSnapshot(snap))

	var got record
	ok, err := mgr.KVGet([]byte("a"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record{Name: "first", Count: 1}, got)

	ok, err = mgr.KVGet([]byte("b"), nil)
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, mgr.RevertToSnapshot(snap+10))
}

func TestCommitFlushesAndDiscardDrops(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)

	require.NoError(t, mgr.KVPut([]byte("kept"), uint64(7)))
	written, err := mgr.Commit()
	require.NoError(t, err)
	require.Equal(t, 1, written)
	again, err := mgr.Commit()
	require.NoError(t, err)
	require.Equal(t, 0, again)

	require.NoError(t, mgr.KVPut([]byte("dropped"), uint64(8)))
	mgr.Discard()

	reloaded := NewManager(db)
	var value uint64
	ok, err := reloaded.KVGet([]byte("kept"), &value)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), value)

	ok, err = reloaded.KVGet([]byte("dropped"), &value)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoleMembershipIsASortedSet(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())

	changed, err := mgr.SetRole("milk/minter", []byte{0x02})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = mgr.SetRole("milk/minter", []byte{0x01})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = mgr.SetRole("milk/minter", []byte{0x02})
	require.NoError(t, err)
	require.False(t, changed)

	members, err := mgr.RoleMembers("milk/minter")
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x01}, {0x02}}, members)
	require.True(t, mgr.HasRole("milk/minter", []byte{0x01}))
	require.False(t, mgr.HasRole("milk/minter", nil))

	removed, err := mgr.RemoveRole("milk/minter", []byte{0x01})
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = mgr.RemoveRole("milk/minter", []byte{0x01})
	require.NoError(t, err)
	require.False(t, removed)
	require.False(t, mgr.HasRole("milk/minter", []byte{0x01}))

	_, err = mgr.SetRole(" ", []byte{0x01})
	require.Error(t, err)
}
