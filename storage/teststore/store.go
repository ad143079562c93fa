// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package teststore

import (
	"context"
	"sort"
	"sync"

	"storj.io/kvstress/storage"
)

// pageEntries is the fan-out used to derive plausible tree counters in Stat.
const pageEntries = 64

// Client implements an in-memory storage.Env.
//
// Write transactions work on a private copy of the items and publish it on
// Commit, so readers keep the snapshot they started with.
type Client struct {
	mu     sync.Mutex
	items  []storage.ListItem
	writer chan struct{}

	CallCount struct {
		BeginRead  int
		BeginWrite int
		Cursor     int
		Get        int
		Put        int
		Delete     int
		Commit     int
		Rollback   int
		Stat       int
	}

	// Commits records how many mutations each committed write transaction
	// applied, in commit order.
	Commits []int

	// FailCommit, when set, is returned by Commit instead of publishing.
	FailCommit error
}

var _ storage.Env = (*Client)(nil)

// New creates a new in-memory environment.
func New() *Client {
	return &Client{writer: make(chan struct{}, 1)}
}

// Items returns a copy of the committed records.
func (store *Client) Items() []storage.ListItem {
	store.mu.Lock()
	defer store.mu.Unlock()
	items := make([]storage.ListItem, len(store.items))
	for i, item := range store.items {
		items[i] = storage.ListItem{
			Key:   storage.CloneKey(item.Key),
			Value: storage.CloneValue(item.Value),
		}
	}
	return items
}

// BeginRead starts a read-only transaction over the committed snapshot.
func (store *Client) BeginRead(ctx context.Context) (storage.ReadTxn, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.BeginRead++
	return &txn{store: store, items: store.items}, nil
}

// BeginWrite starts a read-write transaction, waiting for the previous
// writer to finish.
func (store *Client) BeginWrite(ctx context.Context) (storage.WriteTxn, error) {
	select {
	case store.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.BeginWrite++
	items := append([]storage.ListItem(nil), store.items...)
	return &txn{store: store, items: items, writable: true}, nil
}

// Stat derives tree counters from the committed entry count.
func (store *Client) Stat(ctx context.Context) (storage.Stat, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Stat++

	stat := storage.Stat{Entries: len(store.items)}
	if stat.Entries == 0 {
		return stat, nil
	}
	pages := (stat.Entries + pageEntries - 1) / pageEntries
	stat.LeafPages = pages
	stat.Depth = 1
	for pages > 1 {
		pages = (pages + pageEntries - 1) / pageEntries
		stat.BranchPages += pages
		stat.Depth++
	}
	return stat, nil
}

// Close closes the store
func (store *Client) Close() error { return nil }

func (store *Client) publish(txn *txn) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Commit++
	if store.FailCommit != nil {
		return store.FailCommit
	}
	store.items = txn.items
	store.Commits = append(store.Commits, txn.mutations)
	return nil
}

func (store *Client) count(counter *int) {
	store.mu.Lock()
	*counter++
	store.mu.Unlock()
}

type txn struct {
	store     *Client
	items     []storage.ListItem
	writable  bool
	closed    bool
	version   int
	mutations int
}

// indexOf finds index of key or where it could be inserted
func (txn *txn) indexOf(key storage.Key) (int, bool) {
	i := sort.Search(len(txn.items), func(k int) bool {
		return !txn.items[k].Key.Less(key)
	})
	if i >= len(txn.items) {
		return i, false
	}
	return i, txn.items[i].Key.Equal(key)
}

func (txn *txn) Cursor() (storage.Cursor, error) {
	if txn.closed {
		return nil, storage.ErrTxClosed.New("")
	}
	txn.store.count(&txn.store.CallCount.Cursor)
	return &cursor{txn: txn}, nil
}

func (txn *txn) Get(key storage.Key) (storage.Value, error) {
	if txn.closed {
		return nil, storage.ErrTxClosed.New("")
	}
	txn.store.count(&txn.store.CallCount.Get)
	i, found := txn.indexOf(key)
	if !found {
		return nil, storage.ErrKeyNotFound.New("%x", []byte(key))
	}
	return storage.CloneValue(txn.items[i].Value), nil
}

func (txn *txn) Put(key storage.Key, value storage.Value) error {
	if txn.closed {
		return storage.ErrTxClosed.New("")
	}
	txn.store.count(&txn.store.CallCount.Put)
	if len(key) == 0 {
		return storage.ErrEmptyKey.New("")
	}
	i, found := txn.indexOf(key)
	if found {
		return storage.ErrKeyExists.New("%x", []byte(key))
	}

	txn.items = append(txn.items, storage.ListItem{})
	copy(txn.items[i+1:], txn.items[i:])
	txn.items[i] = storage.ListItem{
		Key:   storage.CloneKey(key),
		Value: storage.CloneValue(value),
	}
	txn.version++
	txn.mutations++
	return nil
}

func (txn *txn) Delete(key storage.Key) error {
	if txn.closed {
		return storage.ErrTxClosed.New("")
	}
	txn.store.count(&txn.store.CallCount.Delete)
	if len(key) == 0 {
		return storage.ErrEmptyKey.New("")
	}
	i, found := txn.indexOf(key)
	if !found {
		return storage.ErrKeyNotFound.New("%x", []byte(key))
	}

	copy(txn.items[i:], txn.items[i+1:])
	txn.items = txn.items[:len(txn.items)-1]
	txn.version++
	txn.mutations++
	return nil
}

func (txn *txn) Commit() error {
	if txn.closed {
		return storage.ErrTxClosed.New("")
	}
	if !txn.writable {
		return txn.Rollback()
	}
	txn.closed = true
	defer func() { <-txn.store.writer }()
	return txn.store.publish(txn)
}

func (txn *txn) Rollback() error {
	if txn.closed {
		return nil
	}
	txn.closed = true
	txn.store.count(&txn.store.CallCount.Rollback)
	if txn.writable {
		<-txn.store.writer
	}
	return nil
}

// cursor implements iterating over items with basic repositioning when the
// transaction changes underneath it
type cursor struct {
	txn       *txn
	nextIndex int
	version   int
	lastKey   storage.Key
}

func (cursor *cursor) at(index int) (storage.Key, storage.Value, error) {
	cursor.version = cursor.txn.version
	if index < 0 || index >= len(cursor.txn.items) {
		cursor.nextIndex = len(cursor.txn.items)
		cursor.lastKey = nil
		return nil, nil, storage.ErrKeyNotFound.New("end of database")
	}
	item := cursor.txn.items[index]
	cursor.lastKey = item.Key
	cursor.nextIndex = index + 1
	return item.Key, item.Value, nil
}

func (cursor *cursor) First() (storage.Key, storage.Value, error) {
	return cursor.at(0)
}

func (cursor *cursor) Last() (storage.Key, storage.Value, error) {
	return cursor.at(len(cursor.txn.items) - 1)
}

func (cursor *cursor) Next() (storage.Key, storage.Value, error) {
	if cursor.version != cursor.txn.version && cursor.lastKey != nil {
		index, found := cursor.txn.indexOf(cursor.lastKey)
		if found {
			index++
		}
		return cursor.at(index)
	}
	return cursor.at(cursor.nextIndex)
}
