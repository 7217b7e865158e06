package model

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// LedgerInfo is the header of the ledger at a committed version.
type LedgerInfo struct {
	Version                    Version
	TransactionAccumulatorHash HashValue
	ConsensusBlockID           HashValue
	Epoch                      uint64
	Round                      uint64
	TimestampUsecs             uint64
}

type ValidatorSignature struct {
	Validator AccountAddress
	Signature []byte
}

// LedgerInfoWithSignatures is a ledger header signed by the validators of its epoch.
type LedgerInfoWithSignatures struct {
	LedgerInfo LedgerInfo
	Signatures []*ValidatorSignature
}

func (l *LedgerInfoWithSignatures) Bytes() ([]byte, error) {
	m := marshalutil.New()
	m.WriteUint64(l.LedgerInfo.Version)
	writeHash(m, l.LedgerInfo.TransactionAccumulatorHash)
	writeHash(m, l.LedgerInfo.ConsensusBlockID)
	m.WriteUint64(l.LedgerInfo.Epoch)
	m.WriteUint64(l.LedgerInfo.Round)
	m.WriteUint64(l.LedgerInfo.TimestampUsecs)

	m.WriteUint32(uint32(len(l.Signatures)))
	for _, signature := range l.Signatures {
		writeAddress(m, signature.Validator)
		writeBytes(m, signature.Signature)
	}

	return m.Bytes(), nil
}

func LedgerInfoWithSignaturesFromBytes(bytes []byte) (*LedgerInfoWithSignatures, int, error) {
	var err error
	m := marshalutil.New(bytes)
	l := new(LedgerInfoWithSignatures)

	if l.LedgerInfo.Version, err = m.ReadUint64(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse version")
	}
	if l.LedgerInfo.TransactionAccumulatorHash, err = readHash(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse accumulator hash")
	}
	if l.LedgerInfo.ConsensusBlockID, err = readHash(m); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse consensus block id")
	}
	if l.LedgerInfo.Epoch, err = m.ReadUint64(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse epoch")
	}
	if l.LedgerInfo.Round, err = m.ReadUint64(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse round")
	}
	if l.LedgerInfo.TimestampUsecs, err = m.ReadUint64(); err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse timestamp")
	}

	count, err := m.ReadUint32()
	if err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse signature count")
	}
	for i := uint32(0); i < count; i++ {
		signature := new(ValidatorSignature)
		if signature.Validator, err = readAddress(m); err != nil {
			return nil, m.ReadOffset(), ierrors.Wrapf(err, "failed to parse validator of signature %d", i)
		}
		if signature.Signature, err = readBytes(m); err != nil {
			return nil, m.ReadOffset(), ierrors.Wrapf(err, "failed to parse signature %d", i)
		}
		l.Signatures = append(l.Signatures, signature)
	}

	return l, m.ReadOffset(), nil
}

// LedgerSnapshot is the canonical view of the current ledger state handed out to callers.
// Callers use LedgerVersion as the upper bound of every subsequent read.
type LedgerSnapshot struct {
	ChainID             ChainID `json:"chain_id"`
	Epoch               U64     `json:"epoch"`
	LedgerVersion       U64     `json:"ledger_version"`
	OldestLedgerVersion U64     `json:"oldest_ledger_version"`
	LedgerTimestamp     U64     `json:"ledger_timestamp"`

	LedgerInfo *LedgerInfoWithSignatures `json:"-"`
}

func NewLedgerSnapshot(chainID ChainID, info *LedgerInfoWithSignatures, oldestVersion Version) *LedgerSnapshot {
	return &LedgerSnapshot{
		ChainID:             chainID,
		Epoch:               U64(info.LedgerInfo.Epoch),
		LedgerVersion:       U64(info.LedgerInfo.Version),
		OldestLedgerVersion: U64(oldestVersion),
		LedgerTimestamp:     U64(info.LedgerInfo.TimestampUsecs),
		LedgerInfo:          info,
	}
}

func (s *LedgerSnapshot) Version() Version {
	return s.LedgerVersion.Uint64()
}

func (s *LedgerSnapshot) String() string {
	return stringify.Struct("LedgerSnapshot",
		stringify.NewStructField("ChainID", s.ChainID),
		stringify.NewStructField("Epoch", s.Epoch.Uint64()),
		stringify.NewStructField("LedgerVersion", s.LedgerVersion.Uint64()),
		stringify.NewStructField("OldestLedgerVersion", s.OldestLedgerVersion.Uint64()),
		stringify.NewStructField("LedgerTimestamp", s.LedgerTimestamp.Uint64()),
	)
}
