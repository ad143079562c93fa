// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"strings"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"
)

// ReportMetrics logs every monkit series collected by this module.
func ReportMetrics(log *zap.Logger, registry *monkit.Registry) {
	registry.Stats(func(key monkit.SeriesKey, field string, val float64) {
		if !strings.Contains(key.String(), "storj.io/kvstress") {
			return
		}
		log.Info("metric", zap.Stringer("series", key), zap.String("field", field), zap.Float64("value", val))
	})
}
