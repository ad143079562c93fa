// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"errors"

	flag "github.com/spf13/pflag"
	"github.com/zeebo/errs"

	"storj.io/common/memory"
	"storj.io/kvstress/storage"
)

const (
	// TxSize is the default number of key operations per write transaction.
	TxSize = 5
	// ProgressEvery is the default key interval between progress lines.
	ProgressEvery = 10000
	// MapSize is the default maximum map size of the environment.
	MapSize = 10 * memory.GiB
)

// Config configures a run.
type Config struct {
	MapSize memory.Size
	NoSync  bool

	TxSize        int
	MaxValueSize  int
	ProgressEvery uint64
	Seed          int64

	InsertLimit  uint64
	VerifyOnStop bool

	TraceEngine   bool
	MetricsReport bool
}

// DefaultConfig returns the configuration of the classic run.
func DefaultConfig() Config {
	return Config{
		MapSize:       MapSize,
		NoSync:        true,
		TxSize:        TxSize,
		MaxValueSize:  MaxValueSize,
		ProgressEvery: ProgressEvery,
		VerifyOnStop:  true,
	}
}

// BindFlags adds run flags to the flagset.
func (config *Config) BindFlags(flag *flag.FlagSet) {
	defaults := DefaultConfig()
	config.MapSize = defaults.MapSize
	flag.Var(&config.MapSize, "map-size", "maximum size of the environment memory map")
	flag.BoolVar(&config.NoSync, "no-sync", defaults.NoSync, "do not flush commits to disk")

	flag.IntVar(&config.TxSize, "tx-size", defaults.TxSize, "key operations per write transaction")
	flag.IntVar(&config.MaxValueSize, "max-value-size", defaults.MaxValueSize, "upper bound of inserted value length (exclusive)")
	flag.Uint64Var(&config.ProgressEvery, "progress-every", defaults.ProgressEvery, "how often should we print progress (every key)")
	flag.Int64Var(&config.Seed, "seed", 0, "seed for value lengths, 0 picks one from the clock")

	flag.Uint64Var(&config.InsertLimit, "insert-limit", 0, "stop inserting after this many keys, 0 runs until interrupted")
	flag.BoolVar(&config.VerifyOnStop, "verify-on-stop", defaults.VerifyOnStop, "verify the database again after a graceful stop")

	flag.BoolVar(&config.TraceEngine, "trace-engine", false, "log every engine operation at debug level")
	flag.BoolVar(&config.MetricsReport, "metrics.report", false, "print collected metrics on exit")
}

// Verify checks whether the values are usable.
func (config *Config) Verify() error {
	var errlist errs.Group
	if config.MapSize < 0 {
		errlist.Add(errors.New("flag '--map-size' must not be negative"))
	}
	if config.TxSize < 1 {
		errlist.Add(errors.New("flag '--tx-size' must be at least 1"))
	}
	if config.MaxValueSize < 1 {
		errlist.Add(errors.New("flag '--max-value-size' must be at least 1"))
	}
	if config.ProgressEvery < 1 {
		errlist.Add(errors.New("flag '--progress-every' must be at least 1"))
	}
	return errlist.Err()
}

// Options returns the engine options of the config.
func (config *Config) Options() storage.Options {
	return storage.Options{
		MapSize: config.MapSize.Int64(),
		NoSync:  config.NoSync,
	}
}
