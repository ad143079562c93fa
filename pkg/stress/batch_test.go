// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"storj.io/kvstress/storage"
	"storj.io/kvstress/storage/teststore"
)

func TestEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	ex := NewExecutor(zaptest.NewLogger(t), store, testConfig())

	last, err := ex.DeleteDown(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, last)
	require.Equal(t, []int{0}, store.Commits, "an empty transaction is committed")

	next, err := ex.InsertUp(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(6), next)
	require.Equal(t, []int{0, 5}, store.Commits)
	require.Equal(t, dense(5), keys(t, store))
}

func TestDeleteDown(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 7)

	rec := &recorder{Env: store}
	ex := NewExecutor(zaptest.NewLogger(t), rec, testConfig())

	last, err := ex.DeleteDown(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, last)
	require.Empty(t, cmp.Diff([][]string{
		{"del 7", "del 6", "del 5", "del 4", "del 3"},
		{"del 2", "del 1"},
	}, rec.txns))
	require.Equal(t, []int{7, 5, 2}, store.Commits)

	_, ok, err := LastKey(ctx, store)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteDownExactMultiple(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 10)

	ex := NewExecutor(zaptest.NewLogger(t), store, testConfig())
	last, err := ex.DeleteDown(ctx, 10)
	require.NoError(t, err)
	require.Zero(t, last)
	require.Equal(t, []int{10, 5, 5, 0}, store.Commits)
	require.Empty(t, store.Items())
}

func TestInsertUpLimit(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	rec := &recorder{Env: store}
	ex := NewExecutor(zaptest.NewLogger(t), rec, testConfig())

	next, err := ex.InsertUp(ctx, 1, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(11), next, "the limit is only checked between transactions")
	require.Empty(t, cmp.Diff([][]string{
		{"put 1", "put 2", "put 3", "put 4", "put 5"},
		{"put 6", "put 7", "put 8", "put 9", "put 10"},
	}, rec.txns))

	summary, err := NewVerifier(zaptest.NewLogger(t), MaxValueSize).Verify(ctx, store)
	require.NoError(t, err)
	require.Equal(t, uint64(10), summary.Records)
}

func TestInsertUpValues(t *testing.T) {
	ctx := context.Background()

	config := testConfig()
	config.MaxValueSize = 16

	var stores [2]*teststore.Client
	for i := range stores {
		stores[i] = teststore.New()
		ex := NewExecutor(zaptest.NewLogger(t), stores[i], config)
		_, err := ex.InsertUp(ctx, 1, 100)
		require.NoError(t, err)
	}

	items := stores[0].Items()
	require.Len(t, items, 100)
	for _, item := range items {
		require.Less(t, len(item.Value), config.MaxValueSize)
		require.Equal(t, Pattern(len(item.Value)), []byte(item.Value))
	}
	require.Empty(t, cmp.Diff(items, stores[1].Items()), "same seed produces the same lengths")
}

func TestTransactionBound(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 23)

	config := testConfig()
	config.TxSize = 4
	rec := &recorder{Env: store}
	ex := NewExecutor(zaptest.NewLogger(t), rec, config)

	last, err := ex.DeleteDown(ctx, 23)
	require.NoError(t, err)
	next, err := ex.InsertUp(ctx, last+1, 17)
	require.NoError(t, err)
	require.Equal(t, uint64(21), next)

	for _, ops := range rec.txns {
		require.LessOrEqual(t, len(ops), config.TxSize)
	}
	require.Equal(t, dense(20), keys(t, store))
}

func TestInsertUpCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := teststore.New()
	rec := &recorder{Env: store, onCommit: func(committed int) {
		if committed == 3 {
			cancel()
		}
	}}
	ex := NewExecutor(zaptest.NewLogger(t), rec, testConfig())

	next, err := ex.InsertUp(ctx, 1, 0)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, uint64(16), next)
	require.Equal(t, dense(15), keys(t, store), "cancellation stops between transactions")
}

func TestDeleteDownCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := teststore.New()
	fill(t, store, 12)
	rec := &recorder{Env: store, onCommit: func(committed int) {
		if committed == 1 {
			cancel()
		}
	}}
	ex := NewExecutor(zaptest.NewLogger(t), rec, testConfig())

	last, err := ex.DeleteDown(ctx, 12)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, uint64(7), last)
	require.Equal(t, dense(7), keys(t, store))
}

func TestCommitFailure(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 7)

	sentinel := errors.New("disk on fire")
	store.FailCommit = sentinel
	ex := NewExecutor(zaptest.NewLogger(t), store, testConfig())

	last, err := ex.DeleteDown(ctx, 7)
	require.ErrorIs(t, err, sentinel)
	require.True(t, Error.Has(err))
	require.Equal(t, uint64(7), last, "frontier is unchanged on failure")

	next, err := ex.InsertUp(ctx, 8, 0)
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, uint64(8), next)

	store.FailCommit = nil
	require.Equal(t, dense(7), keys(t, store))
}

func TestDeleteMissingKey(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 7)
	ex := NewExecutor(zaptest.NewLogger(t), store, testConfig())

	last, err := ex.DeleteDown(ctx, 10)
	require.Error(t, err)
	require.True(t, storage.ErrKeyNotFound.Has(err))
	require.Equal(t, uint64(10), last)
	require.Equal(t, 1, store.CallCount.Rollback)
	require.Equal(t, dense(7), keys(t, store), "failed transaction is rolled back")
}

func TestInsertExistingKey(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 3)
	ex := NewExecutor(zaptest.NewLogger(t), store, testConfig())

	next, err := ex.InsertUp(ctx, 1, 0)
	require.Error(t, err)
	require.True(t, storage.ErrKeyExists.Has(err))
	require.Equal(t, uint64(1), next)
	require.Equal(t, []int{3}, store.Commits)

	// the writer lock was released by the rollback
	next, err = ex.InsertUp(ctx, 4, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(9), next)
}

func TestProgressLogging(t *testing.T) {
	ctx := context.Background()
	store := teststore.New()
	fill(t, store, 20)

	core, logs := observer.New(zap.InfoLevel)
	config := testConfig()
	config.ProgressEvery = 10
	ex := NewExecutor(zap.New(core), store, config)

	last, err := ex.DeleteDown(ctx, 20)
	require.NoError(t, err)
	next, err := ex.InsertUp(ctx, last+1, 20)
	require.NoError(t, err)
	require.Equal(t, uint64(21), next)

	lastKeys := func(message string) []uint64 {
		var result []uint64
		for _, entry := range logs.FilterMessage(message).All() {
			result = append(result, entry.ContextMap()["last key"].(uint64))
		}
		return result
	}

	require.Equal(t, []uint64{10, 0}, lastKeys("deleted"))
	require.Equal(t, 1, logs.FilterMessage("all keys deleted from database").Len())
	require.Equal(t, []uint64{11, 21}, lastKeys("added"))
}
