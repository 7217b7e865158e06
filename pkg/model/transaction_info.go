package model

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
)

// ExecutionStatus is the result of executing a transaction.
type ExecutionStatus struct {
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
}

func ExecutionSuccess() ExecutionStatus {
	return ExecutionStatus{Success: true, VMStatus: "Executed successfully"}
}

// TransactionInfo is the committed summary of a transaction and its effects.
type TransactionInfo struct {
	TransactionHash     HashValue       `json:"hash"`
	StateChangeHash     HashValue       `json:"state_change_hash"`
	EventRootHash       HashValue       `json:"event_root_hash"`
	StateCheckpointHash *HashValue      `json:"state_checkpoint_hash,omitempty"`
	GasUsed             uint64          `json:"gas_used"`
	Status              ExecutionStatus `json:"status"`
}

func (t *TransactionInfo) Hash() HashValue {
	return HashData([]byte("TransactionInfo::"), lo.PanicOnErr(t.Bytes()))
}

func (t *TransactionInfo) Bytes() ([]byte, error) {
	m := marshalutil.New()
	writeHash(m, t.TransactionHash)
	writeHash(m, t.StateChangeHash)
	writeHash(m, t.EventRootHash)
	writeOptionalHash(m, t.StateCheckpointHash)
	m.WriteUint64(t.GasUsed)
	m.WriteBool(t.Status.Success)
	writeString(m, t.Status.VMStatus)

	return m.Bytes(), nil
}

func TransactionInfoFromBytes(bytes []byte) (*TransactionInfo, int, error) {
	var err error
	m := marshalutil.New(bytes)
	t := new(TransactionInfo)

	if t.TransactionHash, err = readHash(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse transaction hash")
	}
	if t.StateChangeHash, err = readHash(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse state change hash")
	}
	if t.EventRootHash, err = readHash(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse event root hash")
	}
	if t.StateCheckpointHash, err = readOptionalHash(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse state checkpoint hash")
	}
	if t.GasUsed, err = m.ReadUint64(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse gas used")
	}
	if t.Status.Success, err = m.ReadBool(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse status")
	}
	if t.Status.VMStatus, err = readString(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse vm status")
	}

	return t, m.ReadOffset(), nil
}

// AccumulateRoot extends the transaction accumulator by one transaction info.
func AccumulateRoot(previousRoot HashValue, infoHash HashValue) HashValue {
	return HashData([]byte("TransactionAccumulator::"), previousRoot[:], infoHash[:])
}

// TransactionAccumulatorProof proves that a transaction info is part of the accumulator at its version.
type TransactionAccumulatorProof struct {
	PreviousRootHash HashValue `json:"previous_root_hash"`
}

// Verify checks that extending the previous root with info yields expectedRoot.
func (p TransactionAccumulatorProof) Verify(info *TransactionInfo, expectedRoot HashValue) error {
	if root := AccumulateRoot(p.PreviousRootHash, info.Hash()); root != expectedRoot {
		return ierrors.Errorf("accumulator root mismatch: expected %s, got %s", expectedRoot, root)
	}

	return nil
}

type TransactionInfoWithProof struct {
	LedgerInfoToTransactionInfoProof TransactionAccumulatorProof `json:"ledger_info_to_transaction_info_proof"`
	TransactionInfo                  *TransactionInfo            `json:"transaction_info"`
}

// TransactionWithProof is a committed transaction as returned by the ledger store.
// Events is nil unless they were requested.
type TransactionWithProof struct {
	Version     Version
	Transaction Transaction
	Events      []*ContractEvent
	Proof       *TransactionInfoWithProof
}

// TransactionOutput holds the effects of executing a transaction.
type TransactionOutput struct {
	WriteSet WriteSet
	Events   []*ContractEvent
	GasUsed  uint64
	Status   ExecutionStatus
}

func (o *TransactionOutput) Bytes() ([]byte, error) {
	m := marshalutil.New()
	o.WriteSet.writeTo(m)
	writeEvents(m, o.Events)
	m.WriteUint64(o.GasUsed)
	m.WriteBool(o.Status.Success)
	writeString(m, o.Status.VMStatus)

	return m.Bytes(), nil
}

func TransactionOutputFromBytes(bytes []byte) (*TransactionOutput, int, error) {
	var err error
	m := marshalutil.New(bytes)
	o := new(TransactionOutput)

	if o.WriteSet, err = readWriteSet(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse write set")
	}
	if o.Events, err = readEvents(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse events")
	}
	if o.GasUsed, err = m.ReadUint64(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse gas used")
	}
	if o.Status.Success, err = m.ReadBool(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse status")
	}
	if o.Status.VMStatus, err = readString(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse vm status")
	}

	return o, m.ReadOffset(), nil
}

// StateChangeHash commits to the write set of the output.
func (o *TransactionOutput) StateChangeHash() HashValue {
	m := marshalutil.New()
	o.WriteSet.writeTo(m)

	return HashData([]byte("WriteSet::"), m.Bytes())
}

// EventRootHash commits to the events of the output.
func (o *TransactionOutput) EventRootHash() HashValue {
	m := marshalutil.New()
	writeEvents(m, o.Events)

	return HashData([]byte("Events::"), m.Bytes())
}

type TransactionAndOutput struct {
	Transaction Transaction
	Output      *TransactionOutput
}

type TransactionInfoListWithProof struct {
	TransactionInfos []*TransactionInfo
}

// TransactionOutputListWithProof is a contiguous window of transactions and their outputs.
type TransactionOutputListWithProof struct {
	TransactionsAndOutputs        []*TransactionAndOutput
	FirstTransactionOutputVersion *Version
	Proof                         TransactionInfoListWithProof
}
