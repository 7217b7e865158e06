package requesthandler

import (
	"github.com/iotaledger/hive.go/ierrors"
)

var (
	// ErrStorageUnavailable means a read from the ledger store failed. Retrying later may succeed.
	ErrStorageUnavailable = ierrors.New("storage unavailable")
	// ErrInconsistentLedger means the ledger has no retained versions or reports contradicting bounds.
	ErrInconsistentLedger = ierrors.New("inconsistent ledger")
	// ErrDataIntegrity means the ledger store returned internally inconsistent data.
	ErrDataIntegrity = ierrors.New("data integrity error")
	ErrBlockNotFound = ierrors.New("block not found")
	// ErrBlockHeightUnavailable means the height of a block could not be decoded from its block metadata transaction.
	ErrBlockHeightUnavailable = ierrors.New("block height unavailable")
	// ErrMalformedLedger means a block does not start with a genesis or block metadata transaction.
	ErrMalformedLedger = ierrors.New("malformed ledger")
	// ErrSubmissionChannel means a request could not be delivered to, or was not answered by, the mempool.
	ErrSubmissionChannel = ierrors.New("mempool unavailable")
	// ErrLedgerBehind means the latest ledger timestamp is older than the tolerated health check duration.
	ErrLedgerBehind = ierrors.New("ledger is behind")
	// ErrSubmissionRetainerDisabled means the node does not retain submission outcomes.
	ErrSubmissionRetainerDisabled = ierrors.New("submission retainer disabled")
)

// joinCause tags err with the given sentinel so that callers can match both the sentinel and the original cause.
func joinCause(sentinel error, err error, format string, args ...any) error {
	return ierrors.Join(sentinel, ierrors.Wrapf(err, format, args...))
}
