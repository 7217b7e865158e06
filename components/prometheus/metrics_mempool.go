package prometheus

import (
	"github.com/iotaledger/ledgerapi/components/prometheus/collector"
)

const (
	mempoolNamespace = "mempool"

	pendingTransactions          = "pending_transactions"
	acceptedSubmissionsTotal     = "accepted_submissions_total"
	rejectedSubmissionsTotal     = "rejected_submissions_total"
	submissionChannelErrorsTotal = "channel_errors_total"
)

var MempoolMetrics = collector.NewCollection(mempoolNamespace,
	collector.WithMetric(collector.NewMetric(pendingTransactions,
		collector.WithType(collector.Gauge),
		collector.WithHelp("Number of transactions waiting in the mempool."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.Mempool.Size()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(acceptedSubmissionsTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of submitted transactions the mempool accepted."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.AcceptedSubmissions.Load()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(rejectedSubmissionsTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of submitted transactions the mempool rejected."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.RejectedSubmissions.Load()), nil
		}),
	)),
	collector.WithMetric(collector.NewMetric(submissionChannelErrorsTotal,
		collector.WithType(collector.Counter),
		collector.WithHelp("Number of requests that could not be delivered to or answered by the mempool."),
		collector.WithCollectFunc(func() (metricValue float64, labelValues []string) {
			return float64(deps.ServerMetrics.SubmissionChannelErrors.Load()), nil
		}),
	)),
)
