package model

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// SignedTransaction is a transaction submitted by a user. Signatures are carried but never checked here.
type SignedTransaction struct {
	Sender                  AccountAddress `json:"sender"`
	SequenceNumber          uint64         `json:"sequence_number"`
	Payload                 []byte         `json:"payload"`
	MaxGasAmount            uint64         `json:"max_gas_amount"`
	GasUnitPrice            uint64         `json:"gas_unit_price"`
	ExpirationTimestampSecs uint64         `json:"expiration_timestamp_secs"`
	ChainID                 ChainID        `json:"chain_id"`
	PublicKey               []byte         `json:"public_key"`
	Signature               []byte         `json:"signature"`
}

// Hash returns the hash the transaction is committed under once it is included in the ledger.
func (s *SignedTransaction) Hash() HashValue {
	return (&UserTransaction{SignedTransaction: s}).Hash()
}

func (s *SignedTransaction) Bytes() ([]byte, error) {
	m := marshalutil.New()
	s.writeTo(m)

	return m.Bytes(), nil
}

func SignedTransactionFromBytes(bytes []byte) (*SignedTransaction, int, error) {
	m := marshalutil.New(bytes)

	signed, err := readSignedTransaction(m)
	if err != nil {
		return nil, m.ReadOffset(), err
	}

	return signed, m.ReadOffset(), nil
}

func (s *SignedTransaction) writeTo(m *marshalutil.MarshalUtil) {
	writeAddress(m, s.Sender)
	m.WriteUint64(s.SequenceNumber)
	writeBytes(m, s.Payload)
	m.WriteUint64(s.MaxGasAmount)
	m.WriteUint64(s.GasUnitPrice)
	m.WriteUint64(s.ExpirationTimestampSecs)
	m.WriteUint8(uint8(s.ChainID))
	writeBytes(m, s.PublicKey)
	writeBytes(m, s.Signature)
}

func readSignedTransaction(m *marshalutil.MarshalUtil) (*SignedTransaction, error) {
	var err error
	s := new(SignedTransaction)

	if s.Sender, err = readAddress(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse sender")
	}
	if s.SequenceNumber, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse sequence number")
	}
	if s.Payload, err = readBytes(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse payload")
	}
	if s.MaxGasAmount, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse max gas amount")
	}
	if s.GasUnitPrice, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse gas unit price")
	}
	if s.ExpirationTimestampSecs, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse expiration timestamp")
	}

	chainID, err := m.ReadUint8()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to parse chain id")
	}
	s.ChainID = ChainID(chainID)

	if s.PublicKey, err = readBytes(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse public key")
	}
	if s.Signature, err = readBytes(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse signature")
	}

	return s, nil
}

func (s *SignedTransaction) String() string {
	return stringify.Struct("SignedTransaction",
		stringify.NewStructField("Hash", s.Hash()),
		stringify.NewStructField("Sender", s.Sender),
		stringify.NewStructField("SequenceNumber", s.SequenceNumber),
		stringify.NewStructField("ChainID", s.ChainID),
		stringify.NewStructField("ExpirationTimestampSecs", s.ExpirationTimestampSecs),
	)
}
