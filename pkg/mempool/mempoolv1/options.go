package mempoolv1

import (
	"time"

	"github.com/iotaledger/hive.go/runtime/options"
)

// WithCapacity sets the maximum number of pending transactions.
func WithCapacity(capacity int) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsCapacity = capacity
	}
}

// WithCapacityPerUser sets the maximum number of pending transactions per sender.
func WithCapacityPerUser(capacity int) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsCapacityPerUser = capacity
	}
}

func WithWorkerCount(workerCount int) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsWorkerCount = workerCount
	}
}

func WithMaxGasAmount(maxGasAmount uint64) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsMaxGasAmount = maxGasAmount
	}
}

func WithMinGasUnitPrice(minGasUnitPrice uint64) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsMinGasUnitPrice = minGasUnitPrice
	}
}

func WithMaxTransactionSize(size int) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsMaxTxnSize = size
	}
}

// WithClock replaces the clock used to check transaction expiration.
func WithClock(clock func() time.Time) options.Option[Mempool] {
	return func(m *Mempool) {
		m.optsClock = clock
	}
}
