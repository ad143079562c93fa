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

func testIterate(t *testing.T, env storage.Env) {
	const count = 300

	items := make([]storage.ListItem, count)
	for i := range items {
		items[i] = storage.ListItem{
			Key:   bigEndian(uint64(i) * 257),
			Value: testrand.BytesN(testrand.Intn(64)),
		}
	}
	shuffled := append([]storage.ListItem(nil), items...)
	testrand.Shuffle(len(shuffled), func(i, k int) { shuffled[i], shuffled[k] = shuffled[k], shuffled[i] })

	put(t, env, shuffled...)
	defer cleanupItems(t, env, items)

	// big-endian encoding makes byte order equal to numeric order
	checkItems(t, env, items)

	tx, err := env.BeginRead(context.Background())
	require.NoError(t, err)
	defer func() { require.NoError(t, tx.Rollback()) }()

	cur, err := tx.Cursor()
	require.NoError(t, err)

	key, value, err := cur.Last()
	require.NoError(t, err)
	require.Equal(t, string(items[count-1].Key), string(key))
	require.Equal(t, string(items[count-1].Value), string(value))

	_, _, err = cur.Next()
	require.True(t, storage.ErrKeyNotFound.Has(err), "%+v", err)
}
