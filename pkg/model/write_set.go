package model

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
)

type WriteOpType uint8

const (
	// WriteOpValue creates or modifies the value at a state key.
	WriteOpValue WriteOpType = iota
	// WriteOpDeletion removes the value at a state key.
	WriteOpDeletion
)

type WriteOp struct {
	Type  WriteOpType
	Value []byte
}

func ValueWriteOp(value []byte) WriteOp {
	return WriteOp{Type: WriteOpValue, Value: value}
}

func DeletionWriteOp() WriteOp {
	return WriteOp{Type: WriteOpDeletion}
}

func (o WriteOp) IsDeletion() bool {
	return o.Type == WriteOpDeletion
}

// WriteSetEntry is a single state mutation produced by executing a transaction.
type WriteSetEntry struct {
	Key StateKey
	Op  WriteOp
}

// WriteSet is the ordered set of state mutations of a transaction.
type WriteSet []*WriteSetEntry

func (w WriteSet) writeTo(m *marshalutil.MarshalUtil) {
	m.WriteUint32(uint32(len(w)))
	for _, entry := range w {
		writeBytes(m, entry.Key.Bytes())
		m.WriteUint8(uint8(entry.Op.Type))
		if entry.Op.Type == WriteOpValue {
			writeBytes(m, entry.Op.Value)
		}
	}
}

func readWriteSet(m *marshalutil.MarshalUtil) (WriteSet, error) {
	count, err := m.ReadUint32()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read write set size")
	}

	writeSet := make(WriteSet, 0, count)
	for i := uint32(0); i < count; i++ {
		keyBytes, err := readBytes(m)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to read key of write set entry %d", i)
		}

		key, _, err := StateKeyFromBytes(keyBytes)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to parse key of write set entry %d", i)
		}

		opType, err := m.ReadUint8()
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to read op type of write set entry %d", i)
		}

		op := WriteOp{Type: WriteOpType(opType)}
		switch op.Type {
		case WriteOpValue:
			if op.Value, err = readBytes(m); err != nil {
				return nil, ierrors.Wrapf(err, "failed to read value of write set entry %d", i)
			}
		case WriteOpDeletion:
		default:
			return nil, ierrors.Errorf("unknown write op type %d in write set entry %d", opType, i)
		}

		writeSet = append(writeSet, &WriteSetEntry{Key: key, Op: op})
	}

	return writeSet, nil
}
