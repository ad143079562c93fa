// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/kvstress/storage"
)

func TestKeyEncoding(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 10000, 1 << 32, math.MaxUint64}
	for i, v := range values {
		key := EncodeKey(v)
		require.Len(t, key, KeySize)

		decoded, ok := DecodeKey(key)
		require.True(t, ok)
		require.Equal(t, v, decoded)

		if i > 0 {
			require.True(t, EncodeKey(values[i-1]).Less(key), "byte order of %d and %d", values[i-1], v)
		}
	}
}

func TestKeyEncodingFreshBuffer(t *testing.T) {
	a, b := EncodeKey(1), EncodeKey(1)
	a[0] = 0xff
	require.Equal(t, storage.Key{0, 0, 0, 0, 0, 0, 0, 1}, b)
}

func TestDecodeKeyInvalid(t *testing.T) {
	_, ok := DecodeKey(storage.Key{1, 2, 3})
	require.False(t, ok)
	_, ok = DecodeKey(nil)
	require.False(t, ok)
}
