// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/kvstress/storage"
)

var mon = monkit.Package()

// checkEvery is how many records are scanned between context checks.
const checkEvery = 1024

// Summary describes a full scan of the database.
type Summary struct {
	Records uint64
	Bytes   int64
	LastKey uint64
}

// Verifier scans the whole database and checks it against the dense key
// range and the canonical value pattern.
//
// Only the content of each value is checked. Its length is not compared to
// what was written, so a value truncated to a shorter prefix still passes.
type Verifier struct {
	log    *zap.Logger
	values *ValuePool
}

// NewVerifier creates a verifier for values up to maxValueSize bytes.
func NewVerifier(log *zap.Logger, maxValueSize int) *Verifier {
	return &Verifier{
		log:    log,
		values: NewValuePool(maxValueSize),
	}
}

// Verify checks that the database holds exactly keys 1..n in order, each
// with a prefix of the canonical pattern. The first violation is returned
// as an *IntegrityError.
func (verifier *Verifier) Verify(ctx context.Context, env storage.Env) (summary Summary, err error) {
	defer mon.Task()(&ctx)(&err)

	expected := uint64(1)
	err = scan(ctx, env, func(key storage.Key, value storage.Value) error {
		actual, ok := DecodeKey(key)
		if !ok || actual != expected {
			return &IntegrityError{
				Kind:     KeyMismatch,
				Expected: expected,
				Actual:   actual,
				Key:      storage.CloneKey(key),
			}
		}
		if offset := verifier.values.Mismatch(value); offset >= 0 {
			return &IntegrityError{
				Kind:     ValueMismatch,
				Expected: expected,
				Actual:   actual,
				Key:      storage.CloneKey(key),
				Value:    storage.CloneValue(value),
				Offset:   offset,
			}
		}

		summary.Records++
		summary.Bytes += int64(len(value))
		summary.LastKey = actual
		expected++
		return nil
	})
	return summary, err
}

// Dump writes every record to w as "<key>: <value bytes>" without checking
// anything. Keys that are not 8 bytes long are written in hex.
func (verifier *Verifier) Dump(ctx context.Context, env storage.Env, w io.Writer) (summary Summary, err error) {
	defer mon.Task()(&ctx)(&err)

	out := bufio.NewWriter(w)
	err = scan(ctx, env, func(key storage.Key, value storage.Value) error {
		var err error
		if v, ok := DecodeKey(key); ok {
			summary.LastKey = v
			_, err = fmt.Fprintf(out, "%d: %v\n", v, []byte(value))
		} else {
			_, err = fmt.Fprintf(out, "%x: %v\n", []byte(key), []byte(value))
		}
		summary.Records++
		summary.Bytes += int64(len(value))
		return err
	})
	return summary, errs.Combine(err, out.Flush())
}

// scan calls fn for every record in key order within one read transaction.
func scan(ctx context.Context, env storage.Env, fn func(storage.Key, storage.Value) error) (err error) {
	tx, err := env.BeginRead(ctx)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(tx.Rollback())) }()

	cur, err := tx.Cursor()
	if err != nil {
		return Error.Wrap(err)
	}

	var seen int
	key, value, err := cur.First()
	for ; err == nil; key, value, err = cur.Next() {
		if key == nil {
			return &IntegrityError{Kind: Unreachable}
		}
		if err := fn(key, value); err != nil {
			return err
		}
		seen++
		if seen%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	if storage.ErrKeyNotFound.Has(err) {
		return nil
	}
	return Error.Wrap(err)
}
