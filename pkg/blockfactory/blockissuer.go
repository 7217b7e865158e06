package blockfactory

import (
	"time"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

// TransactionSource provides the pending transactions a block is built from.
type TransactionSource interface {
	Batch(limit int) []*model.SignedTransaction
	RemoveCommitted(txns ...*model.SignedTransaction)
	RemoveExpired() int
}

// Committer appends executed blocks to the ledger.
type Committer interface {
	Commit(txns []*model.TransactionAndOutput, signatures ...*model.ValidatorSignature) (*model.LedgerInfoWithSignatures, error)
}

// BlockIssuer turns pending transactions into committed blocks.
type BlockIssuer struct {
	factory   *Factory
	source    TransactionSource
	committer Committer
	mutex     syncutils.Mutex

	optsMaxTransactions int
	optsStateCheckpoint bool
	optsClock           func() time.Time

	log.Logger
}

func NewBlockIssuer(logger log.Logger, factory *Factory, source TransactionSource, committer Committer, opts ...options.Option[BlockIssuer]) *BlockIssuer {
	return options.Apply(&BlockIssuer{
		Logger:              logger,
		factory:             factory,
		source:              source,
		committer:           committer,
		optsMaxTransactions: 100,
		optsStateCheckpoint: true,
		optsClock:           time.Now,
	}, opts)
}

// WithMaxTransactions sets the maximum number of user transactions per block.
func WithMaxTransactions(maxTransactions int) options.Option[BlockIssuer] {
	return func(i *BlockIssuer) {
		i.optsMaxTransactions = maxTransactions
	}
}

// WithStateCheckpoints defines whether blocks are closed with a state checkpoint transaction.
func WithStateCheckpoints(enabled bool) options.Option[BlockIssuer] {
	return func(i *BlockIssuer) {
		i.optsStateCheckpoint = enabled
	}
}

func WithIssuerClock(clock func() time.Time) options.Option[BlockIssuer] {
	return func(i *BlockIssuer) {
		i.optsClock = clock
	}
}

// IssueBlock builds the next block from the pending transactions, commits it and evicts the committed transactions
// from the source. Blocks are issued even if nothing is pending so that the ledger timestamp keeps advancing.
func (i *BlockIssuer) IssueBlock() (*model.LedgerInfoWithSignatures, error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	if expired := i.source.RemoveExpired(); expired > 0 {
		i.LogDebug("removed expired transactions", "count", expired)
	}

	txns := i.source.Batch(i.optsMaxTransactions)

	blockOpts := []options.Option[BlockParams]{
		WithTimestamp(i.optsClock()),
		WithTransactions(txns...),
	}
	if i.optsStateCheckpoint {
		blockOpts = append(blockOpts, WithStateCheckpoint())
	}

	block, err := i.factory.CreateBlock(blockOpts...)
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to create block")
	}

	ledgerInfo, err := i.committer.Commit(block)
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to commit block at height %d", i.factory.Height())
	}

	i.source.RemoveCommitted(txns...)

	i.LogDebug("issued block", "height", i.factory.Height(), "version", ledgerInfo.LedgerInfo.Version, "transactions", len(txns))

	return ledgerInfo, nil
}
