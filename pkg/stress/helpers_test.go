// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/kvstress/storage"
)

func testConfig() Config {
	config := DefaultConfig()
	config.Seed = 1
	return config
}

// putItems commits items in a single transaction.
func putItems(t *testing.T, env storage.Env, items ...storage.ListItem) {
	t.Helper()

	tx, err := env.BeginWrite(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, tx.Put(item.Key, item.Value))
	}
	require.NoError(t, tx.Commit())
}

// fill commits the dense range 1..n with values of varying length.
func fill(t *testing.T, env storage.Env, n uint64) {
	t.Helper()

	items := make([]storage.ListItem, 0, n)
	for i := uint64(1); i <= n; i++ {
		items = append(items, storage.ListItem{
			Key:   EncodeKey(i),
			Value: Pattern(int(i*37) % MaxValueSize),
		})
	}
	putItems(t, env, items...)
}

// keys returns the decoded keys of the committed records.
func keys(t *testing.T, env storage.Env) []uint64 {
	t.Helper()

	var result []uint64
	err := scan(context.Background(), env, func(key storage.Key, value storage.Value) error {
		v, ok := DecodeKey(key)
		require.True(t, ok)
		result = append(result, v)
		return nil
	})
	require.NoError(t, err)
	return result
}

func dense(n uint64) []uint64 {
	var result []uint64
	for i := uint64(1); i <= n; i++ {
		result = append(result, i)
	}
	return result
}

// recorder records the key operations of every committed write transaction.
type recorder struct {
	storage.Env
	txns     [][]string
	onCommit func(committed int)
}

func (rec *recorder) BeginWrite(ctx context.Context) (storage.WriteTxn, error) {
	tx, err := rec.Env.BeginWrite(ctx)
	if err != nil {
		return nil, err
	}
	return &recordingTxn{WriteTxn: tx, rec: rec}, nil
}

type recordingTxn struct {
	storage.WriteTxn
	rec *recorder
	ops []string
}

func (tx *recordingTxn) Put(key storage.Key, value storage.Value) error {
	v, _ := DecodeKey(key)
	tx.ops = append(tx.ops, fmt.Sprintf("put %d", v))
	return tx.WriteTxn.Put(key, value)
}

func (tx *recordingTxn) Delete(key storage.Key) error {
	v, _ := DecodeKey(key)
	tx.ops = append(tx.ops, fmt.Sprintf("del %d", v))
	return tx.WriteTxn.Delete(key)
}

func (tx *recordingTxn) Commit() error {
	if err := tx.WriteTxn.Commit(); err != nil {
		return err
	}
	tx.rec.txns = append(tx.rec.txns, tx.ops)
	if tx.rec.onCommit != nil {
		tx.rec.onCommit(len(tx.rec.txns))
	}
	return nil
}
