package requesthandler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ds/shrinkingmap"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/mempool/mempoolv1"
	"github.com/iotaledger/ledgerapi/pkg/metrics"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/storage"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

const testChainID model.ChainID = 4

type TestFramework struct {
	Testing  *testing.T
	Instance *requesthandler.RequestHandler
	Store    *memstore.Store
	Reader   *faultyReader
	Factory  *blockfactory.Factory
	Sender   *mempool.ClientSender
	Mempool  *mempoolv1.Mempool
	Metrics  *metrics.ServerMetrics

	blocks *shrinkingmap.ShrinkingMap[string, *model.LedgerInfoWithSignatures]
}

func NewTestFramework(test *testing.T, opts ...options.Option[blockfactory.Factory]) *TestFramework {
	logger := log.NewLogger()
	registry := vm.NewLayoutRegistry()

	store := memstore.New(mapdb.NewMapDB())
	reader := &faultyReader{Reader: store}
	sender, requests := mempool.NewClientChannel(16)
	serverMetrics := new(metrics.ServerMetrics)

	t := &TestFramework{
		Testing: test,
		Store:   store,
		Reader:  reader,
		Factory: blockfactory.New(testChainID, registry, opts...),
		Sender:  sender,
		Mempool: mempoolv1.New(logger, requests, store, registry, testChainID),
		Metrics: serverMetrics,
		Instance: requesthandler.New(logger, reader, sender,
			requesthandler.WithChainID(testChainID),
			requesthandler.WithInterpreter(registry),
			requesthandler.WithServerMetrics(serverMetrics),
		),
		blocks: shrinkingmap.New[string, *model.LedgerInfoWithSignatures](),
	}

	return t
}

// StartMempool runs the mempool until the test ends.
func (t *TestFramework) StartMempool() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		t.Mempool.Run(ctx)
	}()

	stop := func() {
		cancel()
		t.Sender.Close()
		<-done
	}
	t.Testing.Cleanup(func() {
		select {
		case <-done:
		default:
			stop()
		}
	})

	return stop
}

func (t *TestFramework) CommitGenesis() *model.LedgerInfoWithSignatures {
	genesis, err := t.Factory.Genesis()
	require.NoError(t.Testing, err)

	return t.commit("Genesis", []*model.TransactionAndOutput{genesis})
}

// CommitBlock creates the next block with the factory and commits it under the given alias.
func (t *TestFramework) CommitBlock(alias string, opts ...options.Option[blockfactory.BlockParams]) *model.LedgerInfoWithSignatures {
	block, err := t.Factory.CreateBlock(opts...)
	require.NoError(t.Testing, err)

	return t.commit(alias, block)
}

func (t *TestFramework) commit(alias string, block []*model.TransactionAndOutput) *model.LedgerInfoWithSignatures {
	ledgerInfo, err := t.Store.Commit(block)
	require.NoError(t.Testing, err)

	if !t.blocks.Set(alias, ledgerInfo) {
		t.Testing.Fatalf("alias %s already exists", alias)
	}

	return ledgerInfo
}

// BlockEnd returns the last version of the block committed under alias.
func (t *TestFramework) BlockEnd(alias string) model.Version {
	ledgerInfo, exists := t.blocks.Get(alias)
	if !exists {
		t.Testing.Fatalf("expected alias %s to exist", alias)
	}

	return ledgerInfo.LedgerInfo.Version
}

func (t *TestFramework) LedgerVersion() model.Version {
	snapshot, err := t.Instance.LatestLedgerInfo()
	require.NoError(t.Testing, err)

	return snapshot.Version()
}

func (t *TestFramework) RequireBlockInfo(version model.Version, ledgerVersion model.Version, height uint64, start model.Version, end model.Version) *model.BlockInfo {
	blockInfo, err := t.Instance.BlockInfo(version, ledgerVersion)
	require.NoError(t.Testing, err)

	require.Equal(t.Testing, height, blockInfo.BlockHeight.Uint64())
	require.Equal(t.Testing, start, blockInfo.StartVersion.Uint64())
	require.Equal(t.Testing, end, blockInfo.EndVersion.Uint64())
	require.Equal(t.Testing, uint16(end-start+1), blockInfo.NumTransactions)
	require.LessOrEqual(t.Testing, blockInfo.StartVersion.Uint64(), version)
	require.LessOrEqual(t.Testing, version, blockInfo.EndVersion.Uint64())

	return blockInfo
}

func (t *TestFramework) RequireErrorIs(err error, expected ...error) {
	require.Error(t.Testing, err)
	for _, target := range expected {
		require.ErrorIs(t.Testing, err, target)
	}
}

// NewTransaction creates a valid user transaction for the test chain.
func NewTransaction(sender uint64, sequenceNumber uint64) *model.SignedTransaction {
	return &model.SignedTransaction{
		Sender:                  model.AccountAddressFromUint64(sender),
		SequenceNumber:          sequenceNumber,
		Payload:                 []byte{byte(sender), byte(sequenceNumber)},
		MaxGasAmount:            1000,
		GasUnitPrice:            100,
		ExpirationTimestampSecs: uint64(time.Now().Add(time.Hour).Unix()),
		ChainID:                 testChainID,
	}
}

// faultyReader delegates to a real store unless a fault is injected for a method.
type faultyReader struct {
	storage.Reader

	latestLedgerInfo    func() (*model.LedgerInfoWithSignatures, error)
	blockBoundaries     func(version model.Version, ledgerVersion model.Version) (model.Version, model.Version, error)
	transactionOutputs  func(start model.Version, limit uint64, ledgerVersion model.Version) (*model.TransactionOutputListWithProof, error)
	accumulatorRootHash func(version model.Version) (model.HashValue, error)
	stateViewAtVersion  func(version model.Version) (storage.StateView, error)
}

func (f *faultyReader) LatestLedgerInfo() (*model.LedgerInfoWithSignatures, error) {
	if f.latestLedgerInfo != nil {
		return f.latestLedgerInfo()
	}

	return f.Reader.LatestLedgerInfo()
}

func (f *faultyReader) BlockBoundaries(version model.Version, ledgerVersion model.Version) (model.Version, model.Version, error) {
	if f.blockBoundaries != nil {
		return f.blockBoundaries(version, ledgerVersion)
	}

	return f.Reader.BlockBoundaries(version, ledgerVersion)
}

func (f *faultyReader) TransactionOutputs(start model.Version, limit uint64, ledgerVersion model.Version) (*model.TransactionOutputListWithProof, error) {
	if f.transactionOutputs != nil {
		return f.transactionOutputs(start, limit, ledgerVersion)
	}

	return f.Reader.TransactionOutputs(start, limit, ledgerVersion)
}

func (f *faultyReader) AccumulatorRootHash(version model.Version) (model.HashValue, error) {
	if f.accumulatorRootHash != nil {
		return f.accumulatorRootHash(version)
	}

	return f.Reader.AccumulatorRootHash(version)
}

func (f *faultyReader) StateViewAtVersion(version model.Version) (storage.StateView, error) {
	if f.stateViewAtVersion != nil {
		return f.stateViewAtVersion(version)
	}

	return f.Reader.StateViewAtVersion(version)
}

// shiftedOutputs reports a first output version that is off by one from what was requested.
func shiftedOutputs(reader storage.Reader) func(model.Version, uint64, model.Version) (*model.TransactionOutputListWithProof, error) {
	return func(start model.Version, limit uint64, ledgerVersion model.Version) (*model.TransactionOutputListWithProof, error) {
		outputs, err := reader.TransactionOutputs(start, limit, ledgerVersion)
		if err != nil {
			return nil, err
		}
		shifted := start + 1
		outputs.FirstTransactionOutputVersion = &shifted

		return outputs, nil
	}
}

// staticSender answers every request through respond instead of a mempool.
type staticSender struct {
	respond func(request mempool.ClientRequest)
	err     error
}

func (s *staticSender) Send(_ context.Context, request mempool.ClientRequest) error {
	if s.err != nil {
		return s.err
	}

	go s.respond(request)

	return nil
}
