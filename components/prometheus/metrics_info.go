package prometheus

import (
	"github.com/iotaledger/ledgerapi/components/prometheus/collector"
)

const (
	infoNamespace = "info"

	appName = "app"
)

var InfoMetrics = collector.NewCollection(infoNamespace,
	collector.WithMetric(collector.NewMetric(appName,
		collector.WithType(collector.Gauge),
		collector.WithLabels("name", "version", "chain_id", "node_role"),
		collector.WithHelp("Node software name and version, the chain it serves and its role."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return 1, []string{
				deps.AppInfo.Name,
				deps.AppInfo.Version,
				deps.RequestHandler.ChainID().String(),
				deps.RequestHandler.NodeRole().String(),
			}
		}),
	)),
)
