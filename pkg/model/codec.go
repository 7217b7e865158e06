package model

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
)

// variable length fields are prefixed with their length as uint32.

func writeBytes(m *marshalutil.MarshalUtil, bytes []byte) {
	m.WriteUint32(uint32(len(bytes)))
	m.WriteBytes(bytes)
}

func readBytes(m *marshalutil.MarshalUtil) ([]byte, error) {
	length, err := m.ReadUint32()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read length prefix")
	}

	if length == 0 {
		return []byte{}, nil
	}

	bytes, err := m.ReadBytes(int(length))
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to read %d bytes", length)
	}

	// copy so that the result does not alias the source buffer
	return append([]byte(nil), bytes...), nil
}

func writeString(m *marshalutil.MarshalUtil, s string) {
	writeBytes(m, []byte(s))
}

func readString(m *marshalutil.MarshalUtil) (string, error) {
	bytes, err := readBytes(m)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func writeHash(m *marshalutil.MarshalUtil, h HashValue) {
	m.WriteBytes(h[:])
}

func readHash(m *marshalutil.MarshalUtil) (HashValue, error) {
	bytes, err := m.ReadBytes(HashLength)
	if err != nil {
		return ZeroHash, ierrors.Wrap(err, "failed to read hash")
	}

	h, _, err := HashValueFromBytes(bytes)

	return h, err
}

func writeAddress(m *marshalutil.MarshalUtil, a AccountAddress) {
	m.WriteBytes(a[:])
}

func readAddress(m *marshalutil.MarshalUtil) (AccountAddress, error) {
	bytes, err := m.ReadBytes(AccountAddressLength)
	if err != nil {
		return AccountAddress{}, ierrors.Wrap(err, "failed to read address")
	}

	a, _, err := AccountAddressFromBytes(bytes)

	return a, err
}

func readOptionalHash(m *marshalutil.MarshalUtil) (*HashValue, error) {
	present, err := m.ReadBool()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read option flag")
	}
	if !present {
		return nil, nil
	}

	h, err := readHash(m)
	if err != nil {
		return nil, err
	}

	return &h, nil
}

func writeOptionalHash(m *marshalutil.MarshalUtil, h *HashValue) {
	m.WriteBool(h != nil)
	if h != nil {
		writeHash(m, *h)
	}
}
