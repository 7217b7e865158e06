package mempool

import (
	"github.com/iotaledger/hive.go/stringify"
)

// MempoolStatusCode is the admission decision of the mempool.
type MempoolStatusCode uint8

const (
	// Accepted means the transaction was added to the pending set.
	Accepted MempoolStatusCode = iota
	// MempoolIsFull means the pending set reached its capacity.
	MempoolIsFull
	// TooManyTransactions means the sender reached its per-account capacity.
	TooManyTransactions
	// InvalidSeqNumber means the sequence number is too far ahead of the on-chain one.
	InvalidSeqNumber
	// InvalidUpdate means a transaction with the same sender and sequence number is already pending.
	InvalidUpdate
	// VMError means validation failed, see DiscardedVMStatus for the reason.
	VMError
	UnknownStatus
)

func (c MempoolStatusCode) String() string {
	switch c {
	case Accepted:
		return "Accepted"
	case MempoolIsFull:
		return "MempoolIsFull"
	case TooManyTransactions:
		return "TooManyTransactions"
	case InvalidSeqNumber:
		return "InvalidSeqNumber"
	case InvalidUpdate:
		return "InvalidUpdate"
	case VMError:
		return "VmError"
	default:
		return "UnknownStatus"
	}
}

// DiscardedVMStatus is the validation error that made the mempool discard a transaction.
type DiscardedVMStatus string

const (
	StatusBadChainID           DiscardedVMStatus = "BAD_CHAIN_ID"
	StatusTransactionExpired   DiscardedVMStatus = "TRANSACTION_EXPIRED"
	StatusSequenceNumberTooOld DiscardedVMStatus = "SEQUENCE_NUMBER_TOO_OLD"
	StatusMaxGasAmountExceeded DiscardedVMStatus = "MAX_GAS_UNITS_EXCEEDS_MAX_GAS_UNITS_BOUND"
	StatusGasUnitPriceBelowMin DiscardedVMStatus = "GAS_UNIT_PRICE_BELOW_MIN_BOUND"
	StatusExceededMaxTxnSize   DiscardedVMStatus = "EXCEEDED_MAX_TRANSACTION_SIZE"
	StatusStorageUnavailable   DiscardedVMStatus = "STORAGE_ERROR"
)

// SubmissionStatus is the outcome of a submission. A status other than Accepted is a regular result.
type SubmissionStatus struct {
	Code              MempoolStatusCode
	Message           string
	DiscardedVMStatus *DiscardedVMStatus
}

func NewAcceptedStatus() *SubmissionStatus {
	return &SubmissionStatus{Code: Accepted}
}

func NewRejectedStatus(code MempoolStatusCode, message string) *SubmissionStatus {
	return &SubmissionStatus{Code: code, Message: message}
}

func NewDiscardedStatus(vmStatus DiscardedVMStatus, message string) *SubmissionStatus {
	return &SubmissionStatus{Code: VMError, Message: message, DiscardedVMStatus: &vmStatus}
}

func (s *SubmissionStatus) IsAccepted() bool {
	return s.Code == Accepted
}

func (s *SubmissionStatus) String() string {
	vmStatus := ""
	if s.DiscardedVMStatus != nil {
		vmStatus = string(*s.DiscardedVMStatus)
	}

	return stringify.Struct("SubmissionStatus",
		stringify.NewStructField("Code", s.Code.String()),
		stringify.NewStructField("Message", s.Message),
		stringify.NewStructField("DiscardedVMStatus", vmStatus),
	)
}
