package requesthandler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

func TestRequestHandler_TransactionByVersion(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	txn := NewTransaction(10, 0)
	tf.CommitBlock("Block1", blockfactory.WithTransactions(txn))

	record, err := tf.Instance.TransactionByVersion(2, 2)
	require.NoError(t, err)

	require.EqualValues(t, 2, record.Version)
	require.Equal(t, txn.Hash(), record.Transaction.Hash())
	require.Equal(t, txn.Hash(), record.Info.TransactionHash)
	require.Len(t, record.Events, 1)
	require.Equal(t, model.NewEventKey(blockfactory.SequenceNumberEventCreationNumber, txn.Sender), record.Events[0].Key)
	require.Len(t, record.Changes, 1)
	require.NoError(t, record.VerifyAccumulator())

	root, err := tf.Instance.AccumulatorRootHash(2)
	require.NoError(t, err)
	require.Equal(t, root, record.AccumulatorRootHash)

	// reads are idempotent
	again, err := tf.Instance.TransactionByVersion(2, 2)
	require.NoError(t, err)
	require.Equal(t, record, again)

	_, err = tf.Instance.TransactionByVersion(3, 2)
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable)
}

func TestRequestHandler_TransactionByHash(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	txn := NewTransaction(10, 0)
	tf.CommitBlock("Block1", blockfactory.WithTransactions(txn))

	record, err := tf.Instance.TransactionByHash(txn.Hash(), 2)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.EqualValues(t, 2, record.Version)

	missing, err := tf.Instance.TransactionByHash(model.HashData([]byte("unknown")), 2)
	require.NoError(t, err)
	require.Nil(t, missing)

	// the transaction is not visible before it was committed
	missing, err = tf.Instance.TransactionByHash(txn.Hash(), 1)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRequestHandler_Transactions(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	tf.CommitBlock("Block1", blockfactory.WithTransactions(NewTransaction(10, 0), NewTransaction(11, 0)), blockfactory.WithStateCheckpoint())
	tf.CommitBlock("Block2", blockfactory.WithTransactions(NewTransaction(10, 1)))
	ledgerVersion := tf.LedgerVersion()
	require.EqualValues(t, 6, ledgerVersion)

	records, err := tf.Instance.Transactions(0, 100, ledgerVersion)
	require.NoError(t, err)
	require.Len(t, records, 7)
	for i, record := range records {
		require.EqualValues(t, i, record.Version)
		require.NoError(t, record.VerifyAccumulator())
	}

	records, err = tf.Instance.Transactions(2, 3, ledgerVersion)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.EqualValues(t, 2, records[0].Version)
	require.EqualValues(t, 4, records[2].Version)
	require.Equal(t, model.TransactionTypeStateCheckpoint, records[2].Transaction.Type())
	for _, record := range records {
		require.NoError(t, record.VerifyAccumulator())
	}

	// the range is bounded by the ledger version
	records, err = tf.Instance.Transactions(0, 100, 2)
	require.NoError(t, err)
	require.Len(t, records, 3)

	records, err = tf.Instance.Transactions(ledgerVersion+1, 10, ledgerVersion)
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = tf.Instance.Transactions(0, 0, ledgerVersion)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestRequestHandler_TransactionsDataIntegrity(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	tf.CommitBlock("Block1", blockfactory.WithTransactions(NewTransaction(10, 0), NewTransaction(11, 0)))

	tf.Reader.transactionOutputs = shiftedOutputs(tf.Store)
	_, err := tf.Instance.Transactions(2, 2, 3)
	tf.RequireErrorIs(err, requesthandler.ErrDataIntegrity)

	tf.Reader.transactionOutputs = func(start model.Version, limit uint64, ledgerVersion model.Version) (*model.TransactionOutputListWithProof, error) {
		outputs, err := tf.Store.TransactionOutputs(start, limit, ledgerVersion)
		if err != nil {
			return nil, err
		}
		outputs.Proof.TransactionInfos = outputs.Proof.TransactionInfos[1:]

		return outputs, nil
	}
	_, err = tf.Instance.Transactions(1, 3, 3)
	tf.RequireErrorIs(err, requesthandler.ErrDataIntegrity)

	tf.Reader.transactionOutputs = func(model.Version, uint64, model.Version) (*model.TransactionOutputListWithProof, error) {
		return new(model.TransactionOutputListWithProof), nil
	}
	_, err = tf.Instance.TransactionByVersion(2, 3)
	tf.RequireErrorIs(err, requesthandler.ErrDataIntegrity)

	require.EqualValues(t, 3, tf.Metrics.DataIntegrityFailures.Load())
}

func TestRequestHandler_TransactionsStorageUnavailable(t *testing.T) {
	tf := NewTestFramework(t)
	tf.CommitGenesis()
	tf.CommitBlock("Block1", blockfactory.WithTransactions(NewTransaction(10, 0)))

	tf.Reader.accumulatorRootHash = func(model.Version) (model.HashValue, error) {
		return model.ZeroHash, ierrors.New("accumulator unavailable")
	}
	_, err := tf.Instance.Transactions(0, 3, 2)
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable)

	_, err = tf.Instance.TransactionByVersion(1, 2)
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable)

	// only the root before the first requested version fails
	failure := ierrors.New("accumulator unavailable")
	tf.Reader.accumulatorRootHash = func(version model.Version) (model.HashValue, error) {
		if version == 0 {
			return model.ZeroHash, failure
		}

		return tf.Store.AccumulatorRootHash(version)
	}
	records, err := tf.Instance.Transactions(1, 2, 2)
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable, failure)
	require.Nil(t, records)

	// a pruned predecessor starts the proof chain at the zero root
	tf.Reader.accumulatorRootHash = func(version model.Version) (model.HashValue, error) {
		if version == 0 {
			return model.ZeroHash, storage.ErrPruned
		}

		return tf.Store.AccumulatorRootHash(version)
	}
	records, err = tf.Instance.Transactions(1, 2, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, model.ZeroHash, records[0].Proof.PreviousRootHash)
	tf.Reader.accumulatorRootHash = nil

	tf.Reader.transactionOutputs = func(model.Version, uint64, model.Version) (*model.TransactionOutputListWithProof, error) {
		return nil, storage.ErrPruned
	}
	_, err = tf.Instance.Transactions(0, 3, 2)
	tf.RequireErrorIs(err, requesthandler.ErrStorageUnavailable, storage.ErrPruned)
}
