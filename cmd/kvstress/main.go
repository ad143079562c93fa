// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"io"
	"os"

	hw "github.com/jtolds/monkit-hw/v2"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/kvstress/pkg/process"
	"storj.io/kvstress/pkg/stress"
	"storj.io/kvstress/storage"
	"storj.io/kvstress/storage/boltdb"
	"storj.io/kvstress/storage/storelogger"
)

var (
	rootCmd = &cobra.Command{
		Use:   "kvstress <env-dir> [check|dump]",
		Short: "Verify an environment, then delete and re-insert its keys forever",
		Long: "kvstress verifies that the environment holds the dense key range 1..n with\n" +
			"canonical values, deletes every key in transactions of --tx-size keys and\n" +
			"then inserts keys from 1 upward until interrupted.\n\n" +
			"  check  verify and probe the last key, no mutation\n" +
			"  dump   print every record, no verification",
		Args:         cobra.RangeArgs(1, 2),
		RunE:         cmdRun,
		SilenceUsage: true,
	}

	runCfg stress.Config
)

func init() {
	runCfg.BindFlags(rootCmd.Flags())
}

func main() {
	process.Exec(rootCmd)
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	var token string
	if len(args) > 1 {
		token = args[1]
	}
	mode, err := stress.ParseMode(token)
	if err != nil {
		return err
	}
	if err := runCfg.Verify(); err != nil {
		return err
	}

	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	hw.Register(monkit.Default)
	if err := process.InitDebug(ctx, log.Named("debug"), monkit.Default); err != nil {
		log.Error("failed to start debug endpoints", zap.Error(err))
	}

	return run(ctx, log, args[0], mode, runCfg, os.Stdout)
}

// run opens the environment in dir and runs mode against it.
func run(ctx context.Context, log *zap.Logger, dir string, mode stress.Mode, config stress.Config, out io.Writer) (err error) {
	log.Debug("opening environment",
		zap.String("path", dir),
		zap.Stringer("mode", mode),
		zap.Stringer("map size", config.MapSize),
		zap.Bool("no sync", config.NoSync),
	)

	db, err := boltdb.New(dir, config.Options())
	if err != nil {
		return err
	}
	defer func() {
		if config.NoSync {
			err = errs.Combine(err, db.Sync())
		}
		err = errs.Combine(err, db.Close())
	}()

	var env storage.Env = db
	if config.TraceEngine {
		env = storelogger.New(log.Named("engine"), env)
	}
	if config.MetricsReport {
		defer stress.ReportMetrics(log.Named("metrics"), monkit.Default)
	}

	err = stress.NewRunner(log, env, config, out).Run(ctx, mode)
	if violation, ok := stress.IsIntegrity(err); ok {
		log.Error("integrity violation", violation.Fields()...)
	}
	return err
}
