// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package boltdb

import (
	"bytes"

	bolt "go.etcd.io/bbolt"

	"storj.io/kvstress/storage"
)

// txn adapts a bolt transaction on the default bucket.
type txn struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
	closed bool
}

// lookup reports whether key is present. A seek is used because bolt Get
// cannot tell a missing key from an empty value.
func (txn *txn) lookup(key storage.Key) (storage.Value, bool) {
	k, v := txn.bucket.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return v, true
}

// Cursor opens a cursor bound to the transaction.
func (txn *txn) Cursor() (storage.Cursor, error) {
	if txn.closed {
		return nil, storage.ErrTxClosed.New("")
	}
	return &cursor{cursor: txn.bucket.Cursor()}, nil
}

// Get returns the value stored at key.
func (txn *txn) Get(key storage.Key) (storage.Value, error) {
	if txn.closed {
		return nil, storage.ErrTxClosed.New("")
	}
	value, ok := txn.lookup(key)
	if !ok {
		return nil, storage.ErrKeyNotFound.New("%x", []byte(key))
	}
	return value, nil
}

// Put stores value at key without overwriting.
func (txn *txn) Put(key storage.Key, value storage.Value) error {
	if txn.closed {
		return storage.ErrTxClosed.New("")
	}
	if len(key) == 0 {
		return storage.ErrEmptyKey.New("")
	}
	if _, ok := txn.lookup(key); ok {
		return storage.ErrKeyExists.New("%x", []byte(key))
	}
	if value == nil {
		value = storage.Value{}
	}
	return Error.Wrap(txn.bucket.Put(key, value))
}

// Delete removes key.
func (txn *txn) Delete(key storage.Key) error {
	if txn.closed {
		return storage.ErrTxClosed.New("")
	}
	if len(key) == 0 {
		return storage.ErrEmptyKey.New("")
	}
	if _, ok := txn.lookup(key); !ok {
		return storage.ErrKeyNotFound.New("%x", []byte(key))
	}
	return Error.Wrap(txn.bucket.Delete(key))
}

// Commit applies the transaction.
func (txn *txn) Commit() error {
	if txn.closed {
		return storage.ErrTxClosed.New("")
	}
	txn.closed = true
	return Error.Wrap(txn.tx.Commit())
}

// Rollback releases the transaction. Calling it after Commit is a no-op.
func (txn *txn) Rollback() error {
	if txn.closed {
		return nil
	}
	txn.closed = true
	return Error.Wrap(txn.tx.Rollback())
}

type cursor struct {
	cursor *bolt.Cursor
}

func (cur *cursor) First() (storage.Key, storage.Value, error) {
	return position(cur.cursor.First())
}

func (cur *cursor) Next() (storage.Key, storage.Value, error) {
	return position(cur.cursor.Next())
}

func (cur *cursor) Last() (storage.Key, storage.Value, error) {
	return position(cur.cursor.Last())
}

func position(key, value []byte) (storage.Key, storage.Value, error) {
	if key == nil {
		return nil, nil, storage.ErrKeyNotFound.New("end of database")
	}
	return key, value, nil
}
