// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package testcontext_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/kvstress/internal/testcontext"
)

func TestBasic(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	ctx.Go(func() error {
		return nil
	})

	dir := ctx.Dir("a", "b")
	require.DirExists(t, dir)

	file := ctx.File("a", "c", "data.db")
	require.Equal(t, "data.db", filepath.Base(file))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	require.NoError(t, ctx.Wait())
}
