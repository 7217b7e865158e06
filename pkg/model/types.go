package model

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/iotaledger/hive.go/ierrors"
)

// Version is the strictly increasing sequence number of a committed transaction.
type Version = uint64

const HashLength = blake2b.Size256

// HashValue is a 32 byte cryptographic digest.
type HashValue [HashLength]byte

// ZeroHash is the all-zero hash used for the genesis block.
var ZeroHash = HashValue{}

func HashData(data ...[]byte) HashValue {
	hasher, _ := blake2b.New256(nil)
	for _, d := range data {
		_, _ = hasher.Write(d)
	}

	var h HashValue
	copy(h[:], hasher.Sum(nil))

	return h
}

func HashValueFromBytes(bytes []byte) (HashValue, int, error) {
	var h HashValue
	if len(bytes) < HashLength {
		return h, 0, ierrors.Errorf("invalid hash length: expected %d, got %d", HashLength, len(bytes))
	}
	copy(h[:], bytes[:HashLength])

	return h, HashLength, nil
}

func HashValueFromHex(s string) (HashValue, error) {
	bytes, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ZeroHash, ierrors.Wrapf(err, "failed to decode hash %s", s)
	}
	if len(bytes) != HashLength {
		return ZeroHash, ierrors.Errorf("invalid hash length: expected %d, got %d", HashLength, len(bytes))
	}

	h, _, err := HashValueFromBytes(bytes)

	return h, err
}

func (h HashValue) Bytes() ([]byte, error) {
	return h[:], nil
}

func (h HashValue) IsZero() bool {
	return h == ZeroHash
}

func (h HashValue) ToHex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h HashValue) String() string {
	return h.ToHex()
}

func (h HashValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.ToHex())
}

func (h *HashValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := HashValueFromHex(s)
	if err != nil {
		return err
	}
	*h = parsed

	return nil
}

const AccountAddressLength = 32

// AccountAddress identifies an account on chain.
type AccountAddress [AccountAddressLength]byte

// CoreCodeAddress is the reserved system address 0x1 that hosts the framework resources.
var CoreCodeAddress = AccountAddressFromUint64(1)

func AccountAddressFromUint64(v uint64) AccountAddress {
	var a AccountAddress
	for i := 0; i < 8; i++ {
		a[AccountAddressLength-1-i] = byte(v >> (8 * i))
	}

	return a
}

func AccountAddressFromBytes(bytes []byte) (AccountAddress, int, error) {
	var a AccountAddress
	if len(bytes) < AccountAddressLength {
		return a, 0, ierrors.Errorf("invalid address length: expected %d, got %d", AccountAddressLength, len(bytes))
	}
	copy(a[:], bytes[:AccountAddressLength])

	return a, AccountAddressLength, nil
}

func AccountAddressFromHex(s string) (AccountAddress, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) > 2*AccountAddressLength {
		return AccountAddress{}, ierrors.Errorf("address %s is too long", s)
	}
	// short form addresses like 0x1 are left padded
	trimmed = strings.Repeat("0", 2*AccountAddressLength-len(trimmed)) + trimmed

	bytes, err := hex.DecodeString(trimmed)
	if err != nil {
		return AccountAddress{}, ierrors.Wrapf(err, "failed to decode address %s", s)
	}

	a, _, err := AccountAddressFromBytes(bytes)

	return a, err
}

func (a AccountAddress) Bytes() ([]byte, error) {
	return a[:], nil
}

func (a AccountAddress) ToHex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ShortString strips the leading zeros, e.g. 0x1 for the core code address.
func (a AccountAddress) ShortString() string {
	trimmed := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if trimmed == "" {
		trimmed = "0"
	}

	return "0x" + trimmed
}

func (a AccountAddress) String() string {
	return a.ShortString()
}

func (a AccountAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToHex())
}

func (a *AccountAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := AccountAddressFromHex(s)
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}

// ChainID distinguishes networks so transactions can not be replayed across them.
type ChainID uint8

func (c ChainID) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// U64 is an unsigned 64 bit integer that is encoded as a decimal string in JSON.
// JSON numbers lose precision above 2^53, so any u64 that leaves the node goes through this type.
type U64 uint64

func (u U64) Uint64() uint64 {
	return uint64(u)
}

func (u U64) String() string {
	return strconv.FormatUint(uint64(u), 10)
}

func (u U64) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *U64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ierrors.Wrap(err, "u64 must be encoded as a decimal string")
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return ierrors.Wrapf(err, "invalid u64 %q", s)
	}
	*u = U64(v)

	return nil
}
