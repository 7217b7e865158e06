package prometheus

import (
	"github.com/iotaledger/ledgerapi/components/prometheus/collector"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

const (
	ledgerNamespace = "ledger"

	ledgerVersion                 = "version"
	oldestLedgerVersion           = "oldest_version"
	ledgerTimestampSeconds        = "timestamp_seconds"
	blockLookupsTotal             = "block_lookups_total"
	materializedTransactionsTotal = "materialized_transactions_total"
	dataIntegrityFailuresTotal    = "data_integrity_failures_total"
	malformedBlocksTotal          = "malformed_blocks_total"
)

// latestSnapshot returns an empty snapshot if the ledger can not be read, so that the gauges drop to zero.
func latestSnapshot() *model.LedgerSnapshot {
	snapshot, err := deps.RequestHandler.LatestLedgerInfo()
	if err != nil {
		Component.LogDebugf("failed to read latest ledger info: %s", err)

		return &model.LedgerSnapshot{}
	}

	return snapshot
}

var LedgerMetrics = collector.NewCollection(ledgerNamespace,
	collector.WithMetric(collector.NewMetric(ledgerVersion,
		collector.WithType(collector.Gauge),
		collector.WithHelp("Latest committed ledger version."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(latestSnapshot().LedgerVersion.Uint64()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(oldestLedgerVersion,
		collector.WithType(collector.Gauge),
		collector.WithHelp("Oldest ledger version that was not pruned."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(latestSnapshot().OldestLedgerVersion.Uint64()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(ledgerTimestampSeconds,
		collector.WithType(collector.Gauge),
		collector.WithHelp("Timestamp of the latest committed block in seconds."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(latestSnapshot().LedgerTimestamp.Uint64()) / 1e6, nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(blockLookupsTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of blocks reconstructed from the ledger."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.BlockLookups.Load()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(materializedTransactionsTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of transactions materialized from the ledger."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.MaterializedTransactions.Load()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(dataIntegrityFailuresTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of reads that returned internally inconsistent data."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.DataIntegrityFailures.Load()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(malformedBlocksTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of blocks that did not start with a genesis or block metadata transaction."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.MalformedBlocks.Load()), nil
		}),
	)),
)
