// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/kvstress/internal/testrand"
	"storj.io/kvstress/storage"
)

// RunTests runs common storage.Env tests against an empty env.
func RunTests(t *testing.T, env storage.Env) {
	t.Run("Empty", func(t *testing.T) { testEmpty(t, env) })
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, env) })
	t.Run("Constraints", func(t *testing.T) { testConstraints(t, env) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, env) })
	t.Run("Snapshot", func(t *testing.T) { testSnapshot(t, env) })
	t.Run("Iterate", func(t *testing.T) { testIterate(t, env) })
	t.Run("Stat", func(t *testing.T) { testStat(t, env) })
}

func testEmpty(t *testing.T, env storage.Env) {
	ctx := context.Background()

	tx, err := env.BeginRead(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, tx.Rollback()) }()

	cur, err := tx.Cursor()
	require.NoError(t, err)

	_, _, err = cur.First()
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
	_, _, err = cur.Last()
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)

	_, err = tx.Get(storage.Key("missing"))
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
}

func testCRUD(t *testing.T, env storage.Env) {
	ctx := context.Background()
	items := []storage.ListItem{
		newItem("a", "alpha"),
		newItem("b", ""),
		newItem("c", "charlie"),
	}
	put(t, env, items...)
	defer cleanupItems(t, env, items)

	tx, err := env.BeginRead(ctx)
	require.NoError(t, err)
	for _, item := range items {
		value, err := tx.Get(item.Key)
		require.NoError(t, err)
		require.Equal(t, len(item.Value), len(value))
		require.Equal(t, string(item.Value), string(value))
	}
	require.NoError(t, tx.Rollback())

	wtx, err := env.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, wtx.Delete(storage.Key("b")))
	_, err = wtx.Get(storage.Key("b"))
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
	require.NoError(t, wtx.Put(storage.Key("b"), storage.Value("bravo")))
	require.NoError(t, wtx.Commit())

	checkItems(t, env, []storage.ListItem{
		newItem("a", "alpha"),
		newItem("b", "bravo"),
		newItem("c", "charlie"),
	})
}

func testConstraints(t *testing.T, env storage.Env) {
	ctx := context.Background()
	item := newItem("test", "xyz")
	put(t, env, item)
	defer cleanupItems(t, env, []storage.ListItem{item})

	t.Run("Put Existing", func(t *testing.T) {
		tx, err := env.BeginWrite(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, tx.Rollback()) }()

		err = tx.Put(item.Key, storage.Value("other"))
		require.True(t, storage.ErrKeyExists.Has(err), "%+v", err)
	})

	t.Run("Delete Missing", func(t *testing.T) {
		tx, err := env.BeginWrite(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, tx.Rollback()) }()

		err = tx.Delete(storage.Key("missing"))
		require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
	})

	t.Run("Put Empty", func(t *testing.T) {
		tx, err := env.BeginWrite(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, tx.Rollback()) }()

		err = tx.Put(nil, storage.Value("value"))
		require.Error(t, err)
	})

	t.Run("Use After Commit", func(t *testing.T) {
		tx, err := env.BeginWrite(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		err = tx.Put(storage.Key("late"), nil)
		require.True(t, storage.ErrTxClosed.Has(err), "%+v", err)
		require.NoError(t, tx.Rollback())
	})

	checkItems(t, env, []storage.ListItem{item})
}

func testRollback(t *testing.T, env storage.Env) {
	ctx := context.Background()

	tx, err := env.BeginWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Put(storage.Key("discarded"), storage.Value("x")))
	require.NoError(t, tx.Rollback())

	checkItems(t, env, nil)
}

func testSnapshot(t *testing.T, env storage.Env) {
	ctx := context.Background()
	item := newItem("later", "value")

	reader, err := env.BeginRead(ctx)
	require.NoError(t, err)

	put(t, env, item)
	defer cleanupItems(t, env, []storage.ListItem{item})

	_, err = reader.Get(item.Key)
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
	require.NoError(t, reader.Rollback())

	checkItems(t, env, []storage.ListItem{item})
}

func testStat(t *testing.T, env storage.Env) {
	ctx := context.Background()

	stat, err := env.Stat(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, stat.Entries)

	items := make([]storage.ListItem, 100)
	for i := range items {
		items[i] = storage.ListItem{Key: bigEndian(uint64(i + 1)), Value: testrand.BytesN(32)}
	}
	put(t, env, items...)
	defer cleanupItems(t, env, items)

	stat, err = env.Stat(ctx)
	require.NoError(t, err)
	require.Equal(t, len(items), stat.Entries)
	require.True(t, stat.Depth >= 1, "depth %d", stat.Depth)
	require.True(t, stat.LeafPages >= 1, "leaf pages %d", stat.LeafPages)
}
