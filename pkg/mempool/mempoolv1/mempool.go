package mempoolv1

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iotaledger/hive.go/ds/shrinkingmap"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/hive.go/runtime/workerpool"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

type pendingTransaction struct {
	transaction *model.SignedTransaction
	hash        model.HashValue
}

// Mempool is the reference implementation of the mempool side of the client request channel.
// It keeps the set of pending transactions and validates new ones against the latest ledger state.
type Mempool struct {
	requests    <-chan mempool.ClientRequest
	reader      storage.Reader
	interpreter vm.Interpreter
	chainID     model.ChainID

	transactions *shrinkingmap.ShrinkingMap[model.HashValue, *pendingTransaction]
	// accounts maps a sender to the hashes of its pending transactions by sequence number.
	accounts *shrinkingmap.ShrinkingMap[model.AccountAddress, map[uint64]model.HashValue]
	mutex    syncutils.RWMutex

	workers *workerpool.WorkerPool

	optsCapacity        int
	optsCapacityPerUser int
	optsWorkerCount     int
	optsMaxGasAmount    uint64
	optsMinGasUnitPrice uint64
	optsMaxTxnSize      int
	optsClock           func() time.Time

	log.Logger
}

func New(logger log.Logger, requests <-chan mempool.ClientRequest, reader storage.Reader, interpreter vm.Interpreter, chainID model.ChainID, opts ...options.Option[Mempool]) *Mempool {
	return options.Apply(&Mempool{
		Logger:              logger,
		requests:            requests,
		reader:              reader,
		interpreter:         interpreter,
		chainID:             chainID,
		transactions:        shrinkingmap.New[model.HashValue, *pendingTransaction](),
		accounts:            shrinkingmap.New[model.AccountAddress, map[uint64]model.HashValue](),
		optsCapacity:        2_000_000,
		optsCapacityPerUser: 100,
		optsWorkerCount:     4,
		optsMaxGasAmount:    2_000_000,
		optsMaxTxnSize:      64 * 1024,
		optsClock:           time.Now,
	}, opts, func(m *Mempool) {
		m.workers = workerpool.New("Mempool", workerpool.WithWorkerCount(m.optsWorkerCount))
	})
}

// Run consumes the request channel until ctx is done. Requests still buffered at that point are dropped by
// closing their callbacks.
func (m *Mempool) Run(ctx context.Context) {
	m.workers.Start()
	defer func() {
		m.workers.Shutdown()
		m.workers.ShutdownComplete.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			m.drain()

			return
		case request := <-m.requests:
			m.workers.Submit(func() {
				m.processRequest(request)
			})
		}
	}
}

func (m *Mempool) drain() {
	for {
		select {
		case request := <-m.requests:
			m.LogDebug("dropping request", "requestID", request.RequestID())
			dropRequest(request)
		default:
			return
		}
	}
}

func (m *Mempool) processRequest(request mempool.ClientRequest) {
	switch typedRequest := request.(type) {
	case *mempool.SubmitTransactionRequest:
		status := m.AddTransaction(typedRequest.Transaction)
		m.LogDebug("processed transaction submission", "requestID", typedRequest.ID, "hash", typedRequest.Transaction.Hash(), "status", status.Code)

		typedRequest.Callback <- &mempool.SubmitTransactionResult{Status: status}
	case *mempool.GetTransactionByHashRequest:
		txn, _ := m.TransactionByHash(typedRequest.Hash)

		typedRequest.Callback <- txn
	default:
		m.LogError("unknown request type", "requestID", request.RequestID(), "type", fmt.Sprintf("%T", request))
		dropRequest(request)
	}
}

// AddTransaction validates txn and adds it to the pending set.
func (m *Mempool) AddTransaction(txn *model.SignedTransaction) *mempool.SubmissionStatus {
	if status := m.validate(txn); status != nil {
		return status
	}

	onChainSequenceNumber, err := m.onChainSequenceNumber(txn.Sender)
	if err != nil {
		m.LogWarn("failed to read account state", "sender", txn.Sender, "err", err)

		return mempool.NewDiscardedStatus(mempool.StatusStorageUnavailable, err.Error())
	}
	if txn.SequenceNumber < onChainSequenceNumber {
		return mempool.NewDiscardedStatus(mempool.StatusSequenceNumberTooOld, "transaction sequence number is older than the account sequence number")
	}
	if txn.SequenceNumber >= onChainSequenceNumber+uint64(m.optsCapacityPerUser) {
		return mempool.NewRejectedStatus(mempool.InvalidSeqNumber, "transaction sequence number is too far ahead of the account sequence number")
	}

	hash := txn.Hash()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.transactions.Has(hash) {
		return mempool.NewRejectedStatus(mempool.InvalidUpdate, "transaction already in mempool")
	}

	accountTransactions, _ := m.accounts.Get(txn.Sender)
	if _, exists := accountTransactions[txn.SequenceNumber]; exists {
		return mempool.NewRejectedStatus(mempool.InvalidUpdate, "a transaction with the same sequence number is already pending")
	}
	if m.transactions.Size() >= m.optsCapacity {
		return mempool.NewRejectedStatus(mempool.MempoolIsFull, "mempool is full")
	}
	if len(accountTransactions) >= m.optsCapacityPerUser {
		return mempool.NewRejectedStatus(mempool.TooManyTransactions, "too many pending transactions of the sender")
	}

	if accountTransactions == nil {
		accountTransactions = make(map[uint64]model.HashValue)
		m.accounts.Set(txn.Sender, accountTransactions)
	}
	accountTransactions[txn.SequenceNumber] = hash

	m.transactions.Set(hash, &pendingTransaction{
		transaction: txn,
		hash:        hash,
	})

	return mempool.NewAcceptedStatus()
}

func (m *Mempool) validate(txn *model.SignedTransaction) *mempool.SubmissionStatus {
	if txn.ChainID != m.chainID {
		return mempool.NewDiscardedStatus(mempool.StatusBadChainID, "transaction chain id does not match the chain id of the node")
	}
	if txn.ExpirationTimestampSecs <= uint64(m.optsClock().Unix()) {
		return mempool.NewDiscardedStatus(mempool.StatusTransactionExpired, "transaction expired")
	}
	if txn.MaxGasAmount > m.optsMaxGasAmount {
		return mempool.NewDiscardedStatus(mempool.StatusMaxGasAmountExceeded, "max gas amount exceeds the maximum gas units bound")
	}
	if txn.GasUnitPrice < m.optsMinGasUnitPrice {
		return mempool.NewDiscardedStatus(mempool.StatusGasUnitPriceBelowMin, "gas unit price is below the minimum")
	}
	if txnBytes, err := txn.Bytes(); err != nil || len(txnBytes) > m.optsMaxTxnSize {
		return mempool.NewDiscardedStatus(mempool.StatusExceededMaxTxnSize, "transaction exceeds the maximum size")
	}

	return nil
}

func (m *Mempool) onChainSequenceNumber(address model.AccountAddress) (uint64, error) {
	view, err := m.reader.LatestStateView()
	if err != nil {
		return 0, err
	}

	account, exists, err := vm.NewResolver(view, m.interpreter).Resource(address, vm.AccountTag)
	if err != nil {
		return 0, err
	}
	if !exists {
		// accounts are created by their first transaction
		return 0, nil
	}

	sequenceNumber, err := account.U64(vm.FieldSequenceNumber)
	if err != nil {
		return 0, err
	}

	return sequenceNumber.Uint64(), nil
}

// TransactionByHash returns the pending transaction with the given hash.
func (m *Mempool) TransactionByHash(hash model.HashValue) (*model.SignedTransaction, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	pending, exists := m.transactions.Get(hash)
	if !exists {
		return nil, false
	}

	return pending.transaction, true
}

// Batch returns up to limit pending transactions ordered by sender and sequence number.
func (m *Mempool) Batch(limit int) []*model.SignedTransaction {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	pending := m.transactions.Values()
	sort.Slice(pending, func(i, j int) bool {
		if cmp := bytes.Compare(pending[i].transaction.Sender[:], pending[j].transaction.Sender[:]); cmp != 0 {
			return cmp < 0
		}

		return pending[i].transaction.SequenceNumber < pending[j].transaction.SequenceNumber
	})

	batch := make([]*model.SignedTransaction, 0, min(limit, len(pending)))
	for _, txn := range pending {
		if len(batch) == limit {
			break
		}
		batch = append(batch, txn.transaction)
	}

	return batch
}

// RemoveCommitted evicts committed transactions and every pending transaction of their senders that can no longer
// be committed because its sequence number was used.
func (m *Mempool) RemoveCommitted(txns ...*model.SignedTransaction) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, txn := range txns {
		accountTransactions, exists := m.accounts.Get(txn.Sender)
		if !exists {
			continue
		}

		for sequenceNumber, hash := range accountTransactions {
			if sequenceNumber <= txn.SequenceNumber {
				m.transactions.Delete(hash)
				delete(accountTransactions, sequenceNumber)
			}
		}

		if len(accountTransactions) == 0 {
			m.accounts.Delete(txn.Sender)
		}
	}
}

// RemoveExpired evicts every pending transaction that expired by now and returns how many were removed.
func (m *Mempool) RemoveExpired() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := uint64(m.optsClock().Unix())

	var expired []*pendingTransaction
	m.transactions.ForEach(func(_ model.HashValue, pending *pendingTransaction) bool {
		if pending.transaction.ExpirationTimestampSecs <= now {
			expired = append(expired, pending)
		}

		return true
	})

	for _, pending := range expired {
		m.transactions.Delete(pending.hash)

		if accountTransactions, exists := m.accounts.Get(pending.transaction.Sender); exists {
			delete(accountTransactions, pending.transaction.SequenceNumber)
			if len(accountTransactions) == 0 {
				m.accounts.Delete(pending.transaction.Sender)
			}
		}
	}

	return len(expired)
}

func (m *Mempool) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.transactions.Size()
}

func dropRequest(request mempool.ClientRequest) {
	switch typedRequest := request.(type) {
	case *mempool.SubmitTransactionRequest:
		close(typedRequest.Callback)
	case *mempool.GetTransactionByHashRequest:
		close(typedRequest.Callback)
	}
}
