package model

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

type TransactionType uint8

const (
	TransactionTypeGenesis TransactionType = iota
	TransactionTypeBlockMetadata
	TransactionTypeUser
	TransactionTypeStateCheckpoint
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeGenesis:
		return "genesis_transaction"
	case TransactionTypeBlockMetadata:
		return "block_metadata_transaction"
	case TransactionTypeUser:
		return "user_transaction"
	case TransactionTypeStateCheckpoint:
		return "state_checkpoint_transaction"
	default:
		return "unknown_transaction"
	}
}

// Transaction is a committed ledger entry. The concrete types are
// *GenesisTransaction, *BlockMetadataTransaction, *UserTransaction and *StateCheckpointTransaction.
type Transaction interface {
	Type() TransactionType
	Hash() HashValue
	Bytes() ([]byte, error)
}

// TransactionHash hashes the canonical encoding of a transaction.
func TransactionHash(txn Transaction) HashValue {
	bytes, err := txn.Bytes()
	if err != nil {
		panic(ierrors.Wrap(err, "failed to serialize transaction"))
	}

	return HashData([]byte("Transaction::"), bytes)
}

func TransactionFromBytes(bytes []byte) (Transaction, int, error) {
	m := marshalutil.New(bytes)

	txType, err := m.ReadUint8()
	if err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse transaction type")
	}

	var txn Transaction
	switch TransactionType(txType) {
	case TransactionTypeGenesis:
		txn, err = readGenesisTransaction(m)
	case TransactionTypeBlockMetadata:
		txn, err = readBlockMetadataTransaction(m)
	case TransactionTypeUser:
		var signed *SignedTransaction
		if signed, err = readSignedTransaction(m); err == nil {
			txn = &UserTransaction{SignedTransaction: signed}
		}
	case TransactionTypeStateCheckpoint:
		var blockID HashValue
		if blockID, err = readHash(m); err == nil {
			txn = &StateCheckpointTransaction{BlockID: blockID}
		}
	default:
		return nil, m.ReadOffset(), ierrors.Errorf("unknown transaction type %d", txType)
	}

	if err != nil {
		return nil, m.ReadOffset(), ierrors.Wrapf(err, "failed to parse %s", TransactionType(txType))
	}

	return txn, m.ReadOffset(), nil
}

// GenesisTransaction is the first transaction of a chain. It writes the initial state directly.
type GenesisTransaction struct {
	WriteSet WriteSet
	Events   []*ContractEvent
}

func (g *GenesisTransaction) Type() TransactionType {
	return TransactionTypeGenesis
}

func (g *GenesisTransaction) Hash() HashValue {
	return TransactionHash(g)
}

func (g *GenesisTransaction) Bytes() ([]byte, error) {
	m := marshalutil.New()
	m.WriteUint8(uint8(TransactionTypeGenesis))
	g.WriteSet.writeTo(m)
	writeEvents(m, g.Events)

	return m.Bytes(), nil
}

func readGenesisTransaction(m *marshalutil.MarshalUtil) (*GenesisTransaction, error) {
	writeSet, err := readWriteSet(m)
	if err != nil {
		return nil, err
	}

	events, err := readEvents(m)
	if err != nil {
		return nil, err
	}

	return &GenesisTransaction{WriteSet: writeSet, Events: events}, nil
}

// BlockMetadataTransaction is the system transaction that opens every block after genesis.
type BlockMetadataTransaction struct {
	ID                    HashValue
	Epoch                 uint64
	Round                 uint64
	Proposer              AccountAddress
	FailedProposerIndices []uint32
	TimestampUsecs        uint64
}

func (b *BlockMetadataTransaction) Type() TransactionType {
	return TransactionTypeBlockMetadata
}

func (b *BlockMetadataTransaction) Hash() HashValue {
	return TransactionHash(b)
}

func (b *BlockMetadataTransaction) Bytes() ([]byte, error) {
	m := marshalutil.New()
	m.WriteUint8(uint8(TransactionTypeBlockMetadata))
	writeHash(m, b.ID)
	m.WriteUint64(b.Epoch)
	m.WriteUint64(b.Round)
	writeAddress(m, b.Proposer)
	m.WriteUint32(uint32(len(b.FailedProposerIndices)))
	for _, index := range b.FailedProposerIndices {
		m.WriteUint32(index)
	}
	m.WriteUint64(b.TimestampUsecs)

	return m.Bytes(), nil
}

func readBlockMetadataTransaction(m *marshalutil.MarshalUtil) (*BlockMetadataTransaction, error) {
	var err error
	b := new(BlockMetadataTransaction)

	if b.ID, err = readHash(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse block id")
	}
	if b.Epoch, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse epoch")
	}
	if b.Round, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse round")
	}
	if b.Proposer, err = readAddress(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse proposer")
	}

	count, err := m.ReadUint32()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to parse failed proposer count")
	}
	for i := uint32(0); i < count; i++ {
		index, err := m.ReadUint32()
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to parse failed proposer index %d", i)
		}
		b.FailedProposerIndices = append(b.FailedProposerIndices, index)
	}

	if b.TimestampUsecs, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse timestamp")
	}

	return b, nil
}

func (b *BlockMetadataTransaction) String() string {
	return stringify.Struct("BlockMetadataTransaction",
		stringify.NewStructField("ID", b.ID),
		stringify.NewStructField("Epoch", b.Epoch),
		stringify.NewStructField("Round", b.Round),
		stringify.NewStructField("Proposer", b.Proposer),
		stringify.NewStructField("TimestampUsecs", b.TimestampUsecs),
	)
}

// UserTransaction wraps a signed transaction that was committed to the ledger.
type UserTransaction struct {
	*SignedTransaction
}

func (u *UserTransaction) Type() TransactionType {
	return TransactionTypeUser
}

func (u *UserTransaction) Hash() HashValue {
	return TransactionHash(u)
}

func (u *UserTransaction) Bytes() ([]byte, error) {
	m := marshalutil.New()
	m.WriteUint8(uint8(TransactionTypeUser))
	u.SignedTransaction.writeTo(m)

	return m.Bytes(), nil
}

// StateCheckpointTransaction closes a block and marks the state as checkpointed.
type StateCheckpointTransaction struct {
	BlockID HashValue
}

func (s *StateCheckpointTransaction) Type() TransactionType {
	return TransactionTypeStateCheckpoint
}

func (s *StateCheckpointTransaction) Hash() HashValue {
	return TransactionHash(s)
}

func (s *StateCheckpointTransaction) Bytes() ([]byte, error) {
	m := marshalutil.New()
	m.WriteUint8(uint8(TransactionTypeStateCheckpoint))
	writeHash(m, s.BlockID)

	return m.Bytes(), nil
}
