// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"

	"go.uber.org/zap"

	"storj.io/kvstress/storage"
)

// ReportStats logs the structural counters of the default database.
func ReportStats(ctx context.Context, log *zap.Logger, env storage.Env) (_ storage.Stat, err error) {
	defer mon.Task()(&ctx)(&err)

	stat, err := env.Stat(ctx)
	if err != nil {
		return stat, Error.Wrap(err)
	}

	log.Info("stats",
		zap.Int("depth", stat.Depth),
		zap.Int("branch pages", stat.BranchPages),
		zap.Int("leaf pages", stat.LeafPages),
		zap.Int("overflow pages", stat.OverflowPages),
		zap.Int("entries", stat.Entries),
	)
	return stat, nil
}
