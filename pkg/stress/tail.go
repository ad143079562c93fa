// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"

	"github.com/zeebo/errs"

	"storj.io/kvstress/storage"
)

// LastKey returns the largest key in the database. ok is false when the
// database is empty.
func LastKey(ctx context.Context, env storage.Env) (_ uint64, ok bool, err error) {
	defer mon.Task()(&ctx)(&err)

	tx, err := env.BeginRead(ctx)
	if err != nil {
		return 0, false, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(tx.Rollback())) }()

	cur, err := tx.Cursor()
	if err != nil {
		return 0, false, Error.Wrap(err)
	}

	key, _, err := cur.Last()
	switch {
	case storage.ErrKeyNotFound.Has(err):
		return 0, false, nil
	case err != nil:
		return 0, false, Error.Wrap(err)
	case key == nil:
		return 0, false, &IntegrityError{Kind: Unreachable}
	}

	last, decoded := DecodeKey(key)
	if !decoded {
		return 0, false, &IntegrityError{Kind: KeyMismatch, Key: storage.CloneKey(key)}
	}
	return last, true, nil
}
