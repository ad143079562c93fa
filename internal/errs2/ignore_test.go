// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package errs2_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/errs"

	"storj.io/kvstress/internal/errs2"
)

func TestIsCanceled(t *testing.T) {
	class := errs.Class("kvstress")

	require.True(t, errs2.IsCanceled(context.Canceled))
	require.True(t, errs2.IsCanceled(class.Wrap(context.Canceled)))
	require.True(t, errs2.IsCanceled(class.Wrap(fmt.Errorf("commit: %w", context.Canceled))))
	require.True(t, errs2.IsCanceled(errs.Combine(context.Canceled, nil)))

	require.False(t, errs2.IsCanceled(nil))
	require.False(t, errs2.IsCanceled(context.DeadlineExceeded))
	require.False(t, errs2.IsCanceled(class.New("canceled")))
}

func TestIgnoreCanceled(t *testing.T) {
	require.NoError(t, errs2.IgnoreCanceled(context.Canceled))

	err := errs.New("disk full")
	require.Equal(t, err, errs2.IgnoreCanceled(err))
}
