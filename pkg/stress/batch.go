// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/loov/hrtime"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/kvstress/storage"
)

// Executor deletes and inserts the dense key range in write transactions
// of at most TxSize key operations each.
//
// The key frontier is owned by the caller and passed in and out of each
// phase. Cancellation is only observed between transactions.
type Executor struct {
	log *zap.Logger
	env storage.Env

	txSize        int
	progressEvery uint64
	values        *ValuePool
	rng           *rand.Rand
}

// NewExecutor creates an executor for env.
func NewExecutor(log *zap.Logger, env storage.Env, config Config) *Executor {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug("value lengths", zap.Int64("seed", seed))

	return &Executor{
		log:           log,
		env:           env,
		txSize:        config.TxSize,
		progressEvery: config.ProgressEvery,
		values:        NewValuePool(config.MaxValueSize),
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// DeleteDown deletes keys lastKey, lastKey-1, ... 1 and returns the new
// frontier, which is 0 unless ctx was cancelled between transactions.
func (ex *Executor) DeleteDown(ctx context.Context, lastKey uint64) (_ uint64, err error) {
	defer mon.Task()(&ctx)(&err)

	for {
		if err := ctx.Err(); err != nil {
			return lastKey, err
		}

		start := hrtime.Now()
		next, done, err := ex.deleteBatch(ctx, lastKey)
		if err != nil {
			return lastKey, err
		}
		ex.observe(start, lastKey-next)
		mon.Counter("keys_deleted").Inc(int64(lastKey - next))
		lastKey = next

		if done {
			ex.log.Info("all keys deleted from database")
			return lastKey, nil
		}
		if lastKey%ex.progressEvery == 0 {
			ex.log.Info("deleted", zap.Uint64("last key", lastKey), zap.Duration("elapsed", hrtime.Since(start)))
		}
	}
}

// deleteBatch runs one delete transaction. done reports that the frontier
// reached zero inside the transaction.
func (ex *Executor) deleteBatch(ctx context.Context, lastKey uint64) (_ uint64, done bool, err error) {
	tx, err := ex.env.BeginWrite(ctx)
	if err != nil {
		return lastKey, false, Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, Error.Wrap(tx.Rollback()))
		}
	}()

	key := lastKey
	for i := 0; i < ex.txSize; i++ {
		if key == 0 {
			done = true
			break
		}
		if err := tx.Delete(EncodeKey(key)); err != nil {
			return lastKey, false, Error.Wrap(fmt.Errorf("delete %d: %w", key, err))
		}
		key--
	}

	if err := tx.Commit(); err != nil {
		return lastKey, false, Error.Wrap(fmt.Errorf("commit: %w", err))
	}
	return key, done, nil
}

// InsertUp inserts keys next, next+1, ... with canonical values of random
// length and returns the next key to insert. With limit 0 it only returns
// on failure or cancellation. Otherwise it returns at the first commit
// where at least limit keys below the frontier exist.
func (ex *Executor) InsertUp(ctx context.Context, next, limit uint64) (_ uint64, err error) {
	defer mon.Task()(&ctx)(&err)

	for {
		if limit > 0 && next-1 >= limit {
			return next, nil
		}
		if err := ctx.Err(); err != nil {
			return next, err
		}

		start := hrtime.Now()
		key, err := ex.insertBatch(ctx, next)
		if err != nil {
			return next, err
		}
		ex.observe(start, key-next)
		mon.Meter("keys_inserted").Mark64(int64(key - next))
		next = key

		if next%ex.progressEvery == 1 {
			ex.log.Info("added", zap.Uint64("last key", next), zap.Duration("elapsed", hrtime.Since(start)))
		}
	}
}

// insertBatch runs one insert transaction of exactly txSize keys.
func (ex *Executor) insertBatch(ctx context.Context, next uint64) (_ uint64, err error) {
	tx, err := ex.env.BeginWrite(ctx)
	if err != nil {
		return next, Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, Error.Wrap(tx.Rollback()))
		}
	}()

	key := next
	for i := 0; i < ex.txSize; i++ {
		value := ex.values.Value(ex.rng.Intn(ex.values.MaxSize()))
		if err := tx.Put(EncodeKey(key), value); err != nil {
			return next, Error.Wrap(fmt.Errorf("put %d: %w", key, err))
		}
		key++
	}

	if err := tx.Commit(); err != nil {
		return next, Error.Wrap(fmt.Errorf("commit: %w", err))
	}
	return key, nil
}

func (ex *Executor) observe(start time.Duration, mutations uint64) {
	mon.IntVal("txn_mutations").Observe(int64(mutations))
	mon.DurationVal("txn_duration").Observe(hrtime.Since(start))
}
