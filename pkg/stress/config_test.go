// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storj.io/common/memory"
	"storj.io/kvstress/storage/teststore"
)

func TestConfigFlags(t *testing.T) {
	var config Config
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	config.BindFlags(flags)

	require.NoError(t, flags.Parse(nil))
	require.Equal(t, DefaultConfig(), config)
	require.NoError(t, config.Verify())

	require.NoError(t, flags.Parse([]string{
		"--map-size", "1GiB",
		"--no-sync=false",
		"--tx-size", "9",
		"--insert-limit", "100",
		"--seed", "42",
	}))
	require.Equal(t, memory.GiB, config.MapSize)
	require.Equal(t, 9, config.TxSize)
	require.Equal(t, uint64(100), config.InsertLimit)
	require.Equal(t, int64(42), config.Seed)

	options := config.Options()
	require.Equal(t, memory.GiB.Int64(), options.MapSize)
	require.False(t, options.NoSync)
}

func TestConfigVerify(t *testing.T) {
	config := DefaultConfig()
	config.TxSize = 0
	config.ProgressEvery = 0
	config.MapSize = -1

	err := config.Verify()
	require.Error(t, err)
	require.Contains(t, err.Error(), "--tx-size")
	require.Contains(t, err.Error(), "--progress-every")
	require.Contains(t, err.Error(), "--map-size")
	require.NotContains(t, err.Error(), "--max-value-size")
}

func TestReportStats(t *testing.T) {
	store := teststore.New()
	fill(t, store, 100)

	core, logs := observer.New(zap.InfoLevel)
	stat, err := ReportStats(context.Background(), zap.New(core), store)
	require.NoError(t, err)
	require.Equal(t, 100, stat.Entries)
	require.Equal(t, 2, stat.LeafPages)

	entries := logs.FilterMessage("stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, int64(100), fields["entries"])
	require.Equal(t, int64(2), fields["depth"])
}
