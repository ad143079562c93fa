// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/kvstress/storage"
)

func newItem(key, value string) storage.ListItem {
	return storage.ListItem{
		Key:   storage.Key(key),
		Value: storage.Value(value),
	}
}

func bigEndian(v uint64) storage.Key {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], v)
	return key[:]
}

func put(t *testing.T, env storage.Env, items ...storage.ListItem) {
	t.Helper()

	tx, err := env.BeginWrite(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		if err := tx.Put(item.Key, item.Value); err != nil {
			require.NoError(t, tx.Rollback())
			t.Fatalf("failed to put %q: %+v", item.Key, err)
		}
	}
	require.NoError(t, tx.Commit())
}

func cleanupItems(t *testing.T, env storage.Env, items []storage.ListItem) {
	t.Helper()

	tx, err := env.BeginWrite(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		_ = tx.Delete(item.Key)
	}
	require.NoError(t, tx.Commit())
}

// collect reads every record of env in cursor order.
func collect(t *testing.T, env storage.Env) []storage.ListItem {
	t.Helper()

	tx, err := env.BeginRead(context.Background())
	require.NoError(t, err)
	defer func() { require.NoError(t, tx.Rollback()) }()

	cur, err := tx.Cursor()
	require.NoError(t, err)

	var items []storage.ListItem
	key, value, err := cur.First()
	for ; err == nil; key, value, err = cur.Next() {
		items = append(items, storage.ListItem{
			Key:   storage.CloneKey(key),
			Value: storage.CloneValue(value),
		})
	}
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
	return items
}

func checkItems(t *testing.T, env storage.Env, expItems []storage.ListItem) {
	t.Helper()

	gotItems := collect(t, env)
	require.Len(t, gotItems, len(expItems))
	for i, exp := range expItems {
		got := gotItems[i]
		require.Equal(t, string(exp.Key), string(got.Key), "item %d", i)
		require.Equal(t, string(exp.Value), string(got.Value), "item %d", i)
	}
}
