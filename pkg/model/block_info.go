package model

import (
	"math"

	"github.com/iotaledger/hive.go/stringify"
)

// BlockInfo describes a block derived from the version stream of the ledger.
type BlockInfo struct {
	BlockHeight     U64       `json:"block_height"`
	StartVersion    U64       `json:"start_version"`
	EndVersion      U64       `json:"end_version"`
	BlockHash       HashValue `json:"block_hash"`
	BlockTimestamp  U64       `json:"block_timestamp"`
	NumTransactions uint16    `json:"num_transactions"`
}

func NewBlockInfo(height uint64, start Version, end Version, hash HashValue, timestamp uint64) *BlockInfo {
	return &BlockInfo{
		BlockHeight:     U64(height),
		StartVersion:    U64(start),
		EndVersion:      U64(end),
		BlockHash:       hash,
		BlockTimestamp:  U64(timestamp),
		NumTransactions: NumTransactions(start, end),
	}
}

// NumTransactions returns end - start + 1, saturating instead of wrapping around.
func NumTransactions(start Version, end Version) uint16 {
	if end < start {
		return 0
	}

	count := end - start
	if count >= math.MaxUint16 {
		return math.MaxUint16
	}

	return uint16(count + 1)
}

func (b *BlockInfo) String() string {
	return stringify.Struct("BlockInfo",
		stringify.NewStructField("BlockHeight", b.BlockHeight.Uint64()),
		stringify.NewStructField("StartVersion", b.StartVersion.Uint64()),
		stringify.NewStructField("EndVersion", b.EndVersion.Uint64()),
		stringify.NewStructField("BlockHash", b.BlockHash),
		stringify.NewStructField("BlockTimestamp", b.BlockTimestamp.Uint64()),
		stringify.NewStructField("NumTransactions", b.NumTransactions),
	)
}
