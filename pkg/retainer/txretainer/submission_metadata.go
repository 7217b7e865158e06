package txretainer

import (
	"github.com/iotaledger/hive.go/stringify"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

// SubmissionMetadata is the retained outcome of the latest submission of a transaction.
type SubmissionMetadata struct {
	TransactionHash []byte `gorm:"primaryKey;unique;notnull"`
	Sender          []byte `gorm:"notnull;index:senders"`
	SequenceNumber  uint64 `gorm:"notnull"`
	StatusCode      uint8  `gorm:"notnull"`
	VMStatus        *string
	Message         string
	// SubmittedAt is the time of the submission in unix microseconds.
	SubmittedAt int64 `gorm:"notnull;index:submitted_at"`
}

func newSubmissionMetadata(txn *model.SignedTransaction, status *mempool.SubmissionStatus, submittedAt int64) *SubmissionMetadata {
	hash := txn.Hash()
	sender := txn.Sender

	var vmStatus *string
	if status.DiscardedVMStatus != nil {
		value := string(*status.DiscardedVMStatus)
		vmStatus = &value
	}

	return &SubmissionMetadata{
		TransactionHash: hash[:],
		Sender:          sender[:],
		SequenceNumber:  txn.SequenceNumber,
		StatusCode:      uint8(status.Code),
		VMStatus:        vmStatus,
		Message:         status.Message,
		SubmittedAt:     submittedAt,
	}
}

// Hash returns the hash of the submitted transaction.
func (m *SubmissionMetadata) Hash() model.HashValue {
	var hash model.HashValue
	copy(hash[:], m.TransactionHash)

	return hash
}

// Status returns the submission status the metadata was created from.
func (m *SubmissionMetadata) Status() *mempool.SubmissionStatus {
	status := &mempool.SubmissionStatus{
		Code:    mempool.MempoolStatusCode(m.StatusCode),
		Message: m.Message,
	}
	if m.VMStatus != nil {
		vmStatus := mempool.DiscardedVMStatus(*m.VMStatus)
		status.DiscardedVMStatus = &vmStatus
	}

	return status
}

func (m *SubmissionMetadata) String() string {
	return stringify.Struct("SubmissionMetadata",
		stringify.NewStructField("TransactionHash", m.TransactionHash),
		stringify.NewStructField("Sender", m.Sender),
		stringify.NewStructField("SequenceNumber", m.SequenceNumber),
		stringify.NewStructField("Status", m.Status().String()),
		stringify.NewStructField("SubmittedAt", m.SubmittedAt),
	)
}
