package blockfactory

import (
	"time"

	"github.com/iotaledger/ledgerapi/pkg/model"
)

type BlockParams struct {
	ID                    *model.HashValue
	Height                *uint64
	Epoch                 *uint64
	Round                 *uint64
	Proposer              model.AccountAddress
	FailedProposerIndices []uint32
	Timestamp             *time.Time
	Transactions          []*model.SignedTransaction
	StateCheckpoint       bool
	// SkipHeightUpdate leaves the block metadata resource untouched, producing a block whose height can not be decoded.
	SkipHeightUpdate bool
}

func WithID(id model.HashValue) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.ID = &id
	}
}

// WithHeight overrides the height written to the block metadata resource. Later blocks continue from it.
func WithHeight(height uint64) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.Height = &height
	}
}

func WithEpoch(epoch uint64) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.Epoch = &epoch
	}
}

func WithRound(round uint64) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.Round = &round
	}
}

func WithProposer(proposer model.AccountAddress) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.Proposer = proposer
	}
}

func WithFailedProposerIndices(indices ...uint32) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.FailedProposerIndices = indices
	}
}

func WithTimestamp(timestamp time.Time) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.Timestamp = &timestamp
	}
}

func WithTransactions(txns ...*model.SignedTransaction) func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.Transactions = append(builder.Transactions, txns...)
	}
}

// WithStateCheckpoint closes the block with a state checkpoint transaction.
func WithStateCheckpoint() func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.StateCheckpoint = true
	}
}

func WithoutHeightUpdate() func(builder *BlockParams) {
	return func(builder *BlockParams) {
		builder.SkipHeightUpdate = true
	}
}
