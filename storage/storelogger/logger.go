// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/kvstress/storage"
)

var mon = monkit.Package()

var id int64

// Logger implements a zap.Logger for storage.Env
type Logger struct {
	log *zap.Logger
	env storage.Env
}

var _ storage.Env = (*Logger)(nil)

// New creates a new Logger with log and env
func New(log *zap.Logger, env storage.Env) *Logger {
	loggerid := atomic.AddInt64(&id, 1)
	name := strconv.Itoa(int(loggerid))
	return &Logger{log.Named(name), env}
}

// BeginRead starts a logged read-only transaction.
func (env *Logger) BeginRead(ctx context.Context) (_ storage.ReadTxn, err error) {
	defer mon.Task()(&ctx)(&err)
	env.log.Debug("BeginRead")
	tx, err := env.env.BeginRead(ctx)
	if err != nil {
		return nil, err
	}
	return &readTxn{log: env.log, tx: tx}, nil
}

// BeginWrite starts a logged read-write transaction.
func (env *Logger) BeginWrite(ctx context.Context) (_ storage.WriteTxn, err error) {
	defer mon.Task()(&ctx)(&err)
	env.log.Debug("BeginWrite")
	tx, err := env.env.BeginWrite(ctx)
	if err != nil {
		return nil, err
	}
	return &writeTxn{readTxn: readTxn{log: env.log, tx: tx}, tx: tx}, nil
}

// Stat returns the wrapped env counters.
func (env *Logger) Stat(ctx context.Context) (_ storage.Stat, err error) {
	defer mon.Task()(&ctx)(&err)
	stat, err := env.env.Stat(ctx)
	env.log.Debug("Stat", zap.Int("entries", stat.Entries), zap.Error(err))
	return stat, err
}

// Close closes the env
func (env *Logger) Close() error {
	env.log.Debug("Close")
	return env.env.Close()
}

type readTxn struct {
	log *zap.Logger
	tx  storage.ReadTxn
}

func (txn *readTxn) Cursor() (storage.Cursor, error) {
	txn.log.Debug("Cursor")
	cur, err := txn.tx.Cursor()
	if err != nil {
		return nil, err
	}
	return &cursor{log: txn.log, cursor: cur}, nil
}

func (txn *readTxn) Get(key storage.Key) (storage.Value, error) {
	value, err := txn.tx.Get(key)
	txn.log.Debug("Get", zap.Binary("key", key), zap.Int("value length", len(value)), zap.Error(err))
	return value, err
}

func (txn *readTxn) Rollback() error {
	txn.log.Debug("Rollback")
	return txn.tx.Rollback()
}

type writeTxn struct {
	readTxn
	tx storage.WriteTxn
}

func (txn *writeTxn) Put(key storage.Key, value storage.Value) error {
	txn.log.Debug("Put", zap.Binary("key", key), zap.Int("value length", len(value)), zap.Binary("truncated value", truncate(value)))
	return txn.tx.Put(key, value)
}

func (txn *writeTxn) Delete(key storage.Key) error {
	txn.log.Debug("Delete", zap.Binary("key", key))
	return txn.tx.Delete(key)
}

func (txn *writeTxn) Commit() error {
	txn.log.Debug("Commit")
	return txn.tx.Commit()
}

type cursor struct {
	log    *zap.Logger
	cursor storage.Cursor
}

func (cur *cursor) First() (storage.Key, storage.Value, error) {
	return cur.logged("First", cur.cursor.First)
}

func (cur *cursor) Next() (storage.Key, storage.Value, error) {
	return cur.logged("Next", cur.cursor.Next)
}

func (cur *cursor) Last() (storage.Key, storage.Value, error) {
	return cur.logged("Last", cur.cursor.Last)
}

func (cur *cursor) logged(op string, fn func() (storage.Key, storage.Value, error)) (storage.Key, storage.Value, error) {
	key, value, err := fn()
	cur.log.Debug(op,
		zap.Binary("key", key),
		zap.Int("value length", len(value)),
		zap.Binary("truncated value", truncate(value)),
		zap.Error(err),
	)
	return key, value, err
}

func truncate(v storage.Value) (t []byte) {
	if len(v)-1 < 10 {
		t = []byte(v)
	} else {
		t = v[:10]
	}
	return t
}
