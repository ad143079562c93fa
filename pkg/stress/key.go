// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"encoding/binary"

	"storj.io/kvstress/storage"
)

// KeySize is the length of an encoded key.
const KeySize = 8

// EncodeKey encodes v as a big-endian key, so byte order matches numeric
// order. Each call returns a fresh buffer.
func EncodeKey(v uint64) storage.Key {
	key := make(storage.Key, KeySize)
	binary.BigEndian.PutUint64(key, v)
	return key
}

// DecodeKey decodes a key written by EncodeKey.
func DecodeKey(key storage.Key) (uint64, bool) {
	if len(key) != KeySize {
		return 0, false
	}
	return binary.BigEndian.Uint64(key), true
}
