package storage

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

var (
	// ErrNotFound is returned when the store holds no record for the requested version, hash or key.
	ErrNotFound = ierrors.New("not found")
	// ErrPruned is returned when the requested version is older than the oldest retained version.
	ErrPruned = ierrors.New("version pruned")
	// ErrVersionAhead is returned when a read is bounded by a ledger version that the requested data lies beyond.
	ErrVersionAhead = ierrors.New("version ahead of ledger version")
)

// Order is the iteration order of event reads.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// Reader gives point-in-time reads of the versioned ledger.
// Implementations must be safe for concurrent use.
type Reader interface {
	// LatestLedgerInfo returns the latest signed ledger header.
	LatestLedgerInfo() (*model.LedgerInfoWithSignatures, error)

	// FirstTransactionVersion returns the oldest retained version, false if the store never ingested a transaction.
	FirstTransactionVersion() (version model.Version, exists bool, err error)

	StateViewAtVersion(version model.Version) (StateView, error)

	LatestStateView() (StateView, error)

	TransactionByVersion(version model.Version, ledgerVersion model.Version, fetchEvents bool) (*model.TransactionWithProof, error)

	// TransactionByHash returns false if no transaction with the given hash is committed at or below ledgerVersion.
	TransactionByHash(hash model.HashValue, ledgerVersion model.Version, fetchEvents bool) (txn *model.TransactionWithProof, exists bool, err error)

	TransactionOutputs(start model.Version, limit uint64, ledgerVersion model.Version) (*model.TransactionOutputListWithProof, error)

	AccountTransactions(address model.AccountAddress, startSequenceNumber uint64, limit uint64, includeEvents bool, ledgerVersion model.Version) ([]*model.TransactionWithProof, error)

	Events(key model.EventKey, start uint64, order Order, limit uint64) ([]*model.EventWithVersion, error)

	// BlockBoundaries returns the first and last version of the block containing version.
	BlockBoundaries(version model.Version, ledgerVersion model.Version) (start model.Version, end model.Version, err error)

	BlockTimestamp(version model.Version) (uint64, error)

	AccumulatorRootHash(version model.Version) (model.HashValue, error)

	StateValuesByKeyPrefix(prefix model.StateKeyPrefix, version model.Version) ([]*model.StateKeyValue, error)
}

// StateView is a read-only snapshot of the global state at a fixed version.
type StateView interface {
	Version() model.Version

	// StateValue returns false if the key holds no value at the version of the view.
	StateValue(key model.StateKey) (value []byte, exists bool, err error)
}
