package prometheus

import (
	"github.com/iotaledger/ledgerapi/components/prometheus/collector"
)

const (
	retainerNamespace = "retainer"

	databaseSizeBytes   = "database_size_bytes"
	retainedSubmissions  = "retained_submissions"
)

var RetainerMetrics = collector.NewCollection(retainerNamespace,
	collector.WithMetric(collector.NewMetric(databaseSizeBytes,
		collector.WithType(collector.Gauge),
		collector.WithHelp("Size of the retainer database on disk."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.RetainerDatabase.Size()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(retainedSubmissions,
		collector.WithType(collector.Gauge),
		collector.WithHelp("Number of retained submission outcomes."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			count, err := deps.Retainer.Count()
			if err != nil {
				Component.LogDebugf("failed to count retained submissions: %s", err)

				return 0, nil
			}

			return float64(count), nil
		}),
	)),
)
