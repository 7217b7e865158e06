package requesthandler_test

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

func TestRequestHandler_SubmitTransaction(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	tf.StartMempool()

	txn := NewTransaction(10, 0)
	status, err := tf.Instance.SubmitTransaction(context.Background(), txn)
	require.NoError(t, err)
	require.True(t, status.IsAccepted())

	pending, err := tf.Instance.PendingTransactionByHash(context.Background(), txn.Hash())
	require.NoError(t, err)
	require.Equal(t, txn, pending)

	// a rejection is an outcome, not an error
	status, err = tf.Instance.SubmitTransaction(context.Background(), txn)
	require.NoError(t, err)
	require.False(t, status.IsAccepted())
	require.Equal(t, mempool.InvalidUpdate, status.Code)

	wrongChain := NewTransaction(11, 0)
	wrongChain.ChainID = testChainID + 1
	status, err = tf.Instance.SubmitTransaction(context.Background(), wrongChain)
	require.NoError(t, err)
	require.NotNil(t, status.DiscardedVMStatus)
	require.Equal(t, mempool.StatusBadChainID, *status.DiscardedVMStatus)

	missing, err := tf.Instance.PendingTransactionByHash(context.Background(), model.HashData([]byte("unknown")))
	require.NoError(t, err)
	require.Nil(t, missing)

	require.EqualValues(t, 1, tf.Metrics.AcceptedSubmissions.Load())
	require.EqualValues(t, 2, tf.Metrics.RejectedSubmissions.Load())
}

func TestRequestHandler_SubmitTransactionConcurrent(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	tf.StartMempool()

	const senders = 32

	var wg sync.WaitGroup
	statuses := make([]*mempool.SubmissionStatus, senders)
	errs := make([]error, senders)
	for i := range senders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			txn := NewTransaction(uint64(100+i), 0)
			// every other sender uses an expired transaction
			if i%2 == 1 {
				txn.ExpirationTimestampSecs = 1
			}

			statuses[i], errs[i] = tf.Instance.SubmitTransaction(context.Background(), txn)
		}(i)
	}
	wg.Wait()

	for i := range senders {
		require.NoError(t, errs[i])
		if i%2 == 1 {
			require.False(t, statuses[i].IsAccepted(), "submission %d", i)
			require.Equal(t, mempool.StatusTransactionExpired, *statuses[i].DiscardedVMStatus)
		} else {
			require.True(t, statuses[i].IsAccepted(), "submission %d", i)
		}
	}
	require.Equal(t, senders/2, tf.Mempool.Size())
}

func TestRequestHandler_SubmitTransactionOutOfOrderResponses(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()

	const submissions = 8

	var mutex sync.Mutex
	held := make([]*mempool.SubmitTransactionRequest, 0, submissions)
	answered := make([]model.AccountAddress, 0, submissions)

	// holds every request and answers them in reverse order once all arrived
	reversingSender := &staticSender{respond: func(request mempool.ClientRequest) {
		mutex.Lock()
		defer mutex.Unlock()

		held = append(held, request.(*mempool.SubmitTransactionRequest))
		if len(held) < submissions {
			return
		}

		for i := len(held) - 1; i >= 0; i-- {
			sender := held[i].Transaction.Sender
			answered = append(answered, sender)
			held[i].Callback <- &mempool.SubmitTransactionResult{Status: mempool.NewRejectedStatus(mempool.InvalidSeqNumber, sender.ToHex())}
		}
	}}
	instance := requesthandler.New(log.NewLogger(), tf.Store, reversingSender)

	var wg sync.WaitGroup
	statuses := make([]*mempool.SubmissionStatus, submissions)
	errs := make([]error, submissions)
	for i := range submissions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			statuses[i], errs[i] = instance.SubmitTransaction(context.Background(), NewTransaction(uint64(100+i), 0))
		}(i)
	}
	wg.Wait()

	for i := range submissions {
		require.NoError(t, errs[i])
		require.Equal(t, model.AccountAddressFromUint64(uint64(100+i)).ToHex(), statuses[i].Message, "submission %d", i)
	}

	require.Len(t, answered, submissions)
	for i := range held {
		require.Equal(t, held[i].Transaction.Sender, answered[submissions-1-i])
	}
}

func TestRequestHandler_SubmitTransactionMempoolShutdown(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	stop := tf.StartMempool()
	stop()

	_, err := tf.Instance.SubmitTransaction(context.Background(), NewTransaction(10, 0))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionChannel, mempool.ErrMempoolShutdown)

	_, err = tf.Instance.PendingTransactionByHash(context.Background(), model.HashData([]byte("unknown")))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionChannel, mempool.ErrMempoolShutdown)

	require.EqualValues(t, 2, tf.Metrics.SubmissionChannelErrors.Load())
}

func TestRequestHandler_SubmitTransactionDroppedResponse(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()

	droppingSender := &staticSender{respond: func(request mempool.ClientRequest) {
		switch typedRequest := request.(type) {
		case *mempool.SubmitTransactionRequest:
			close(typedRequest.Callback)
		case *mempool.GetTransactionByHashRequest:
			close(typedRequest.Callback)
		}
	}}
	instance := requesthandler.New(log.NewLogger(), tf.Store, droppingSender)

	_, err := instance.SubmitTransaction(context.Background(), NewTransaction(10, 0))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionChannel)

	_, err = instance.PendingTransactionByHash(context.Background(), model.HashData([]byte("unknown")))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionChannel)
}

func TestRequestHandler_SubmitTransactionMempoolError(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()

	errInternal := ierrors.New("mempool internal error")
	failingSender := &staticSender{respond: func(request mempool.ClientRequest) {
		if submitRequest, isSubmitRequest := request.(*mempool.SubmitTransactionRequest); isSubmitRequest {
			submitRequest.Callback <- &mempool.SubmitTransactionResult{Err: errInternal}
		}
	}}
	instance := requesthandler.New(log.NewLogger(), tf.Store, failingSender)

	_, err := instance.SubmitTransaction(context.Background(), NewTransaction(10, 0))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionChannel, errInternal)

	unreachableSender := &staticSender{err: ierrors.New("receiver gone")}
	instance = requesthandler.New(log.NewLogger(), tf.Store, unreachableSender)

	_, err = instance.SubmitTransaction(context.Background(), NewTransaction(10, 0))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionChannel)
}

func TestRequestHandler_SubmitTransactionCanceled(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()

	// the mempool never answers
	silentSender := &staticSender{respond: func(mempool.ClientRequest) {}}
	instance := requesthandler.New(log.NewLogger(), tf.Store, silentSender)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := instance.SubmitTransaction(ctx, NewTransaction(10, 0))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, requesthandler.ErrSubmissionChannel)
}

// mapRetainer keeps the latest submission outcome per transaction hash.
type mapRetainer struct {
	mutex       sync.Mutex
	submissions map[model.HashValue]*txretainer.SubmissionMetadata
	err         error
}

func (m *mapRetainer) RecordSubmission(txn *model.SignedTransaction, status *mempool.SubmissionStatus) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return m.err
	}

	hash, sender := txn.Hash(), txn.Sender
	m.submissions[hash] = &txretainer.SubmissionMetadata{
		TransactionHash: hash[:],
		Sender:          sender[:],
		SequenceNumber:  txn.SequenceNumber,
		StatusCode:      uint8(status.Code),
		Message:         status.Message,
	}

	return nil
}

func (m *mapRetainer) SubmissionByHash(hash model.HashValue) (*txretainer.SubmissionMetadata, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	return m.submissions[hash], nil
}

func (m *mapRetainer) SubmissionsBySender(sender model.AccountAddress, limit int) ([]*txretainer.SubmissionMetadata, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	submissions := make([]*txretainer.SubmissionMetadata, 0)
	for _, submission := range m.submissions {
		if bytes.Equal(submission.Sender, sender[:]) {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].SequenceNumber < submissions[j].SequenceNumber
	})
	if len(submissions) > limit {
		submissions = submissions[:limit]
	}

	return submissions, nil
}

func TestRequestHandler_SubmissionOutcome(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	tf.StartMempool()

	_, err := tf.Instance.SubmissionOutcome(model.HashData([]byte("unknown")))
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionRetainerDisabled)
	_, err = tf.Instance.AccountSubmissions(model.AccountAddressFromUint64(10), 10)
	tf.RequireErrorIs(err, requesthandler.ErrSubmissionRetainerDisabled)

	retainer := &mapRetainer{submissions: make(map[model.HashValue]*txretainer.SubmissionMetadata)}
	instance := requesthandler.New(log.NewLogger(), tf.Store, tf.Sender,
		requesthandler.WithChainID(testChainID),
		requesthandler.WithSubmissionRetainer(retainer),
	)

	txn := NewTransaction(10, 0)
	_, err = instance.SubmitTransaction(context.Background(), txn)
	require.NoError(t, err)
	_, err = instance.SubmitTransaction(context.Background(), txn)
	require.NoError(t, err)

	metadata, err := instance.SubmissionOutcome(txn.Hash())
	require.NoError(t, err)
	require.Equal(t, mempool.InvalidUpdate, metadata.Status().Code)

	_, err = instance.SubmissionOutcome(model.HashData([]byte("unknown")))
	tf.RequireErrorIs(err, storage.ErrNotFound)

	_, err = instance.SubmitTransaction(context.Background(), NewTransaction(10, 1))
	require.NoError(t, err)
	submissions, err := instance.AccountSubmissions(model.AccountAddressFromUint64(10), 10)
	require.NoError(t, err)
	require.Len(t, submissions, 2)
	require.Equal(t, txn.Hash(), submissions[0].Hash())
	require.EqualValues(t, 1, submissions[1].SequenceNumber)

	submissions, err = instance.AccountSubmissions(model.AccountAddressFromUint64(10), 1)
	require.NoError(t, err)
	require.Len(t, submissions, 1)

	submissions, err = instance.AccountSubmissions(model.AccountAddressFromUint64(99), 10)
	require.NoError(t, err)
	require.Empty(t, submissions)

	// a failing retainer does not fail the submission
	retainer.err = ierrors.New("disk full")
	status, err := instance.SubmitTransaction(context.Background(), NewTransaction(11, 0))
	require.NoError(t, err)
	require.True(t, status.IsAccepted())

	_, err = instance.SubmissionOutcome(txn.Hash())
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable)
	_, err = instance.AccountSubmissions(model.AccountAddressFromUint64(10), 10)
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable)
}
