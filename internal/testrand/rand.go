// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testrand implements generating random values for tests.
package testrand

import (
	"math/rand"

	"storj.io/common/memory"
)

// Intn returns, as an int, a non-negative pseudo-random number in [0,n).
// It panics if n <= 0.
func Intn(n int) int {
	return rand.Intn(n)
}

// Read reads pseudo-random data into data.
func Read(data []byte) {
	const newSourceThreshold = 64
	if len(data) < newSourceThreshold {
		_, _ = rand.Read(data)
		return
	}

	src := rand.NewSource(rand.Int63())
	r := rand.New(src)
	_, _ = r.Read(data)
}

// Bytes generates size amount of random data.
func Bytes(size memory.Size) []byte {
	data := make([]byte, size.Int())
	Read(data)
	return data
}

// BytesN generates size amount of random data.
func BytesN(size int) []byte {
	return Bytes(memory.Size(size))
}

// Shuffle pseudo-randomizes the order of n elements using swap.
func Shuffle(n int, swap func(i, k int)) {
	rand.Shuffle(n, swap)
}
