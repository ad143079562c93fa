// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package storage

import (
	"bytes"
	"context"

	"github.com/zeebo/errs"
)

var (
	// Error is the default error class for engine failures.
	Error = errs.Class("storage")

	// ErrKeyNotFound is returned when a key or a cursor position does not exist.
	ErrKeyNotFound = errs.Class("key not found")

	// ErrKeyExists is returned when Put would overwrite an existing key.
	ErrKeyExists = errs.Class("key exists")

	// ErrEmptyKey is returned when an empty key is used in Put or Delete.
	ErrEmptyKey = errs.Class("empty key")

	// ErrTxClosed is returned when a transaction is used after Commit or Rollback.
	ErrTxClosed = errs.Class("transaction closed")
)

// Key is the type for the keys in an `Env`
type Key []byte

// Value is the type for the values in an `Env`
type Value []byte

// Less returns whether key comes before other in byte order.
func (key Key) Less(other Key) bool { return bytes.Compare(key, other) < 0 }

// Equal returns whether key is equal to other.
func (key Key) Equal(other Key) bool { return bytes.Equal(key, other) }

// CloneKey creates a copy of key
func CloneKey(key Key) Key { return append(key[:0:0], key...) }

// CloneValue creates a copy of value
func CloneValue(value Value) Value { return append(value[:0:0], value...) }

// ListItem is a single record of the database.
type ListItem struct {
	Key   Key
	Value Value
}

// Stat contains the structural counters of the default database.
type Stat struct {
	Depth         int
	BranchPages   int
	LeafPages     int
	OverflowPages int
	Entries       int
}

// Options configure how an environment is opened.
type Options struct {
	// MapSize is the maximum size of the memory map.
	MapSize int64
	// NoSync relaxes durability: commits are not flushed to disk.
	NoSync bool
}

// Env is an opened environment of an ordered transactional key-value
// engine with a single unnamed database.
//
// Only one write transaction may be open at a time; read transactions see
// the state as of their start.
type Env interface {
	// BeginRead starts a read-only transaction.
	BeginRead(ctx context.Context) (ReadTxn, error)
	// BeginWrite starts a read-write transaction.
	BeginWrite(ctx context.Context) (WriteTxn, error)
	// Stat returns the counters of the default database.
	Stat(ctx context.Context) (Stat, error)
	// Close releases the environment.
	Close() error
}

// ReadTxn is a read-only view of the database.
type ReadTxn interface {
	// Cursor opens a cursor bound to the transaction.
	Cursor() (Cursor, error)
	// Get returns the value stored at key or ErrKeyNotFound.
	Get(key Key) (Value, error)
	// Rollback releases the transaction without applying anything.
	Rollback() error
}

// WriteTxn is a read-write transaction.
type WriteTxn interface {
	ReadTxn
	// Put stores value at key. It returns ErrKeyExists when key is present.
	Put(key Key, value Value) error
	// Delete removes key. It returns ErrKeyNotFound when key is absent.
	Delete(key Key) error
	// Commit applies the transaction.
	Commit() error
}

// Cursor walks the records of a transaction in key order.
//
// Every positioning call returns ErrKeyNotFound when there is no record at
// the requested position. Returned slices are only valid during the
// transaction.
type Cursor interface {
	First() (Key, Value, error)
	Next() (Key, Value, error)
	Last() (Key, Value, error)
}
