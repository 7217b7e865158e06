package metrics

import "go.uber.org/atomic"

// ServerMetrics defines metrics over the entire runtime of the node.
type ServerMetrics struct {
	// The number of reconstructed blocks.
	BlockLookups atomic.Uint64
	// The number of materialized transactions.
	MaterializedTransactions atomic.Uint64
	// The number of reads that failed because a collaborator returned inconsistent data.
	DataIntegrityFailures atomic.Uint64
	// The number of block boundaries that did not start with a genesis or block metadata transaction.
	MalformedBlocks atomic.Uint64
	// The number of submissions the mempool accepted.
	AcceptedSubmissions atomic.Uint64
	// The number of submissions the mempool rejected.
	RejectedSubmissions atomic.Uint64
	// The number of requests that could not be delivered to or answered by the mempool.
	SubmissionChannelErrors atomic.Uint64
}
