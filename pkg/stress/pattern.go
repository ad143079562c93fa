// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

// MaxValueSize is the default upper bound of a test value.
const MaxValueSize = 4096

// Pattern returns the canonical value of the given length, where byte i
// is i mod 256.
func Pattern(length int) []byte {
	value := make([]byte, length)
	for i := range value {
		value[i] = byte(i)
	}
	return value
}

// ValuePool hands out prefixes of one canonical buffer.
type ValuePool struct {
	pattern []byte
}

// NewValuePool creates a pool of values up to maxSize bytes long.
func NewValuePool(maxSize int) *ValuePool {
	return &ValuePool{pattern: Pattern(maxSize)}
}

// MaxSize returns the longest value the pool can produce.
func (pool *ValuePool) MaxSize() int { return len(pool.pattern) }

// Value returns the canonical value of length n. The result shares memory
// with the pool and must not be modified.
func (pool *ValuePool) Value(n int) []byte {
	return pool.pattern[:n:n]
}

// Mismatch returns the first offset where value differs from the canonical
// pattern, or -1 when value is a prefix of it.
func (pool *ValuePool) Mismatch(value []byte) int {
	n := len(value)
	if n > len(pool.pattern) {
		n = len(pool.pattern)
	}
	for i := 0; i < n; i++ {
		if value[i] != pool.pattern[i] {
			return i
		}
	}
	if len(value) > len(pool.pattern) {
		return len(pool.pattern)
	}
	return -1
}
