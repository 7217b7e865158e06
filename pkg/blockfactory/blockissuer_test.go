package blockfactory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/mempool/mempoolv1"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

type failingCommitter struct{}

func (failingCommitter) Commit([]*model.TransactionAndOutput, ...*model.ValidatorSignature) (*model.LedgerInfoWithSignatures, error) {
	return nil, ierrors.New("disk full")
}

func newPendingTransaction(sender uint64, sequenceNumber uint64) *model.SignedTransaction {
	return &model.SignedTransaction{
		Sender:                  model.AccountAddressFromUint64(sender),
		SequenceNumber:          sequenceNumber,
		MaxGasAmount:            100,
		ExpirationTimestampSecs: 4_000_000_000,
		ChainID:                 3,
	}
}

func TestBlockIssuer_IssueBlock(t *testing.T) {
	registry := vm.NewLayoutRegistry()
	store := memstore.New(mapdb.NewMapDB())
	factory := blockfactory.New(3, registry)

	genesis, err := factory.Genesis()
	require.NoError(t, err)
	_, err = store.Commit([]*model.TransactionAndOutput{genesis})
	require.NoError(t, err)

	_, requests := mempool.NewClientChannel(1)
	pool := mempoolv1.New(log.NewLogger(), requests, store, registry, 3)
	require.True(t, pool.AddTransaction(newPendingTransaction(10, 0)).IsAccepted())
	require.True(t, pool.AddTransaction(newPendingTransaction(11, 0)).IsAccepted())

	issuer := blockfactory.NewBlockIssuer(log.NewLogger(), factory, pool, store,
		blockfactory.WithIssuerClock(func() time.Time { return time.UnixMicro(1_000) }),
	)

	// block metadata, two user transactions and the state checkpoint
	ledgerInfo, err := issuer.IssueBlock()
	require.NoError(t, err)
	require.EqualValues(t, 4, ledgerInfo.LedgerInfo.Version)
	require.EqualValues(t, 1_000, ledgerInfo.LedgerInfo.TimestampUsecs)
	require.Equal(t, 0, pool.Size())
	require.EqualValues(t, 1, factory.Height())

	// committed sequence numbers are enforced from now on
	status := pool.AddTransaction(newPendingTransaction(10, 0))
	require.NotNil(t, status.DiscardedVMStatus)
	require.Equal(t, mempool.StatusSequenceNumberTooOld, *status.DiscardedVMStatus)

	// empty blocks keep the ledger moving
	ledgerInfo, err = issuer.IssueBlock()
	require.NoError(t, err)
	require.EqualValues(t, 6, ledgerInfo.LedgerInfo.Version)
	require.EqualValues(t, 2, factory.Height())

	start, end, err := store.BlockBoundaries(6, 6)
	require.NoError(t, err)
	require.EqualValues(t, 5, start)
	require.EqualValues(t, 6, end)
}

func TestBlockIssuer_CommitFailure(t *testing.T) {
	registry := vm.NewLayoutRegistry()
	store := memstore.New(mapdb.NewMapDB())
	factory := blockfactory.New(3, registry)

	genesis, err := factory.Genesis()
	require.NoError(t, err)
	_, err = store.Commit([]*model.TransactionAndOutput{genesis})
	require.NoError(t, err)

	_, requests := mempool.NewClientChannel(1)
	pool := mempoolv1.New(log.NewLogger(), requests, store, registry, 3)
	require.True(t, pool.AddTransaction(newPendingTransaction(10, 0)).IsAccepted())

	issuer := blockfactory.NewBlockIssuer(log.NewLogger(), factory, pool, failingCommitter{},
		blockfactory.WithMaxTransactions(1),
		blockfactory.WithStateCheckpoints(false),
	)

	_, err = issuer.IssueBlock()
	require.Error(t, err)

	// transactions of a block that was not committed stay pending
	require.Equal(t, 1, pool.Size())
}
