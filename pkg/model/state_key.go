package model

import (
	"bytes"
	"strings"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
)

// StructTag identifies an on-chain struct type, e.g. 0x1::block::BlockMetadata.
type StructTag struct {
	Address    AccountAddress `json:"address"`
	Module     string         `json:"module"`
	Name       string         `json:"name"`
	TypeParams []string       `json:"type_params"`
}

func NewStructTag(address AccountAddress, module string, name string, typeParams ...string) StructTag {
	return StructTag{
		Address:    address,
		Module:     module,
		Name:       name,
		TypeParams: typeParams,
	}
}

// ParseStructTag parses the canonical form address::module::name<param, ...>.
func ParseStructTag(s string) (StructTag, error) {
	base := s
	var typeParams []string
	if idx := strings.Index(s, "<"); idx != -1 {
		if !strings.HasSuffix(s, ">") {
			return StructTag{}, ierrors.Errorf("invalid struct tag %s: unbalanced type parameters", s)
		}
		base = s[:idx]
		for _, param := range strings.Split(s[idx+1:len(s)-1], ",") {
			typeParams = append(typeParams, strings.TrimSpace(param))
		}
	}

	parts := strings.Split(base, "::")
	if len(parts) != 3 {
		return StructTag{}, ierrors.Errorf("invalid struct tag %s: expected address::module::name", s)
	}

	address, err := AccountAddressFromHex(parts[0])
	if err != nil {
		return StructTag{}, ierrors.Wrapf(err, "invalid struct tag %s", s)
	}

	return NewStructTag(address, parts[1], parts[2], typeParams...), nil
}

func (t StructTag) Equal(other StructTag) bool {
	if t.Address != other.Address || t.Module != other.Module || t.Name != other.Name || len(t.TypeParams) != len(other.TypeParams) {
		return false
	}

	for i := range t.TypeParams {
		if t.TypeParams[i] != other.TypeParams[i] {
			return false
		}
	}

	return true
}

func (t StructTag) String() string {
	var builder strings.Builder
	builder.WriteString(t.Address.ShortString())
	builder.WriteString("::")
	builder.WriteString(t.Module)
	builder.WriteString("::")
	builder.WriteString(t.Name)

	if len(t.TypeParams) > 0 {
		builder.WriteString("<")
		builder.WriteString(strings.Join(t.TypeParams, ", "))
		builder.WriteString(">")
	}

	return builder.String()
}

// PathType is the kind of access path a state key points to.
type PathType uint8

const (
	PathTypeResource PathType = iota
	PathTypeCode
)

func (p PathType) String() string {
	switch p {
	case PathTypeResource:
		return "Resource"
	case PathTypeCode:
		return "Code"
	default:
		return "Unknown"
	}
}

// StateKey addresses a single entry of the global state: either a resource or a code module stored under an account.
type StateKey struct {
	Address AccountAddress
	Path    PathType
	// Tag is set for resource paths.
	Tag StructTag
	// Module is set for code paths.
	Module string
}

func ResourceStateKey(address AccountAddress, tag StructTag) StateKey {
	return StateKey{
		Address: address,
		Path:    PathTypeResource,
		Tag:     tag,
	}
}

func CodeStateKey(address AccountAddress, module string) StateKey {
	return StateKey{
		Address: address,
		Path:    PathTypeCode,
		Module:  module,
	}
}

// ResourceTag returns the struct tag if the key points to a resource.
func (k StateKey) ResourceTag() (StructTag, bool) {
	if k.Path != PathTypeResource {
		return StructTag{}, false
	}

	return k.Tag, true
}

func (k StateKey) Equal(other StateKey) bool {
	return bytes.Equal(k.Bytes(), other.Bytes())
}

// Bytes returns the storage encoding of the key. All keys of an account share the address as prefix.
func (k StateKey) Bytes() []byte {
	m := marshalutil.New()
	writeAddress(m, k.Address)
	m.WriteUint8(uint8(k.Path))

	switch k.Path {
	case PathTypeResource:
		writeString(m, k.Tag.String())
	case PathTypeCode:
		writeString(m, k.Module)
	}

	return m.Bytes()
}

func StateKeyFromBytes(bytes []byte) (StateKey, int, error) {
	m := marshalutil.New(bytes)

	address, err := readAddress(m)
	if err != nil {
		return StateKey{}, m.ReadOffset(), ierrors.Wrap(err, "failed to parse state key address")
	}

	pathType, err := m.ReadUint8()
	if err != nil {
		return StateKey{}, m.ReadOffset(), ierrors.Wrap(err, "failed to parse state key path type")
	}

	path, err := readString(m)
	if err != nil {
		return StateKey{}, m.ReadOffset(), ierrors.Wrap(err, "failed to parse state key path")
	}

	switch PathType(pathType) {
	case PathTypeResource:
		tag, err := ParseStructTag(path)
		if err != nil {
			return StateKey{}, m.ReadOffset(), ierrors.Wrap(err, "failed to parse resource path")
		}

		return ResourceStateKey(address, tag), m.ReadOffset(), nil
	case PathTypeCode:
		return CodeStateKey(address, path), m.ReadOffset(), nil
	default:
		return StateKey{}, m.ReadOffset(), ierrors.Errorf("unknown path type %d", pathType)
	}
}

func (k StateKey) String() string {
	switch k.Path {
	case PathTypeResource:
		return k.Address.ShortString() + "/resource/" + k.Tag.String()
	case PathTypeCode:
		return k.Address.ShortString() + "/code/" + k.Module
	default:
		return k.Address.ShortString() + "/unknown"
	}
}

// StateKeyPrefix selects all state keys stored under one account.
type StateKeyPrefix []byte

func StateKeyPrefixFromAddress(address AccountAddress) StateKeyPrefix {
	return append(StateKeyPrefix(nil), address[:]...)
}

func (p StateKeyPrefix) Matches(key StateKey) bool {
	return bytes.HasPrefix(key.Bytes(), p)
}

type StateKeyValue struct {
	Key   StateKey
	Value []byte
}
