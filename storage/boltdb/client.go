// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	bolt "go.etcd.io/bbolt"

	"storj.io/kvstress/storage"
)

var mon = monkit.Package()

// Error is the default boltdb errs class
var Error = errs.Class("boltdb error")

var (
	defaultTimeout = 1 * time.Second
)

const (
	// fileMode sets permissions so owner can read and write
	fileMode = 0600
	// dirMode is used when the environment directory has to be created
	dirMode = 0700

	// DataFile is the name of the data file inside the environment directory.
	DataFile = "data.db"

	// defaultBucket holds the single unnamed database of the environment.
	defaultBucket = "default"
)

// Client is the bolt backed storage.Env
type Client struct {
	db     *bolt.DB
	bucket []byte
	Path   string
}

var _ storage.Env = (*Client)(nil)

// New opens the environment stored in the directory dir, creating the
// directory, the data file and the default database when missing.
func New(dir string, opts storage.Options) (*Client, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, Error.Wrap(err)
	}

	path := filepath.Join(dir, DataFile)
	db, err := bolt.Open(path, fileMode, &bolt.Options{
		Timeout:         defaultTimeout,
		NoSync:          opts.NoSync,
		InitialMmapSize: int(opts.MapSize),
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	bucket := []byte(defaultBucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, Error.Wrap(errs.Combine(err, db.Close()))
	}

	return &Client{
		db:     db,
		bucket: bucket,
		Path:   path,
	}, nil
}

// BeginRead starts a read-only transaction.
func (client *Client) BeginRead(ctx context.Context) (_ storage.ReadTxn, err error) {
	defer mon.Task()(&ctx)(&err)
	return client.begin(false)
}

// BeginWrite starts a read-write transaction. It blocks while another
// write transaction is open.
func (client *Client) BeginWrite(ctx context.Context) (_ storage.WriteTxn, err error) {
	defer mon.Task()(&ctx)(&err)
	return client.begin(true)
}

func (client *Client) begin(writable bool) (*txn, error) {
	tx, err := client.db.Begin(writable)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	bucket := tx.Bucket(client.bucket)
	if bucket == nil {
		return nil, Error.Wrap(errs.Combine(
			errs.New("missing default database %q", client.bucket),
			tx.Rollback(),
		))
	}
	return &txn{tx: tx, bucket: bucket}, nil
}

// Stat returns the counters of the default database.
func (client *Client) Stat(ctx context.Context) (stat storage.Stat, err error) {
	defer mon.Task()(&ctx)(&err)
	err = client.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(client.bucket)
		if bucket == nil {
			return errs.New("missing default database %q", client.bucket)
		}
		stats := bucket.Stats()
		stat = storage.Stat{
			Depth:         stats.Depth,
			BranchPages:   stats.BranchPageN,
			LeafPages:     stats.LeafPageN,
			OverflowPages: stats.BranchOverflowN + stats.LeafOverflowN,
			Entries:       stats.KeyN,
		}
		return nil
	})
	return stat, Error.Wrap(err)
}

// Sync flushes the data file, used after NoSync runs.
func (client *Client) Sync() error {
	return Error.Wrap(client.db.Sync())
}

// Close closes a BoltDB client
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}
