package vm

import (
	"github.com/iotaledger/ledgerapi/pkg/model"
)

// FieldType is the wire type of a resource field.
type FieldType uint8

const (
	FieldTypeBool FieldType = iota
	FieldTypeU8
	FieldTypeU64
	FieldTypeAddress
	FieldTypeBytes
	FieldTypeString
)

func (f FieldType) String() string {
	switch f {
	case FieldTypeBool:
		return "bool"
	case FieldTypeU8:
		return "u8"
	case FieldTypeU64:
		return "u64"
	case FieldTypeAddress:
		return "address"
	case FieldTypeBytes:
		return "vector<u8>"
	case FieldTypeString:
		return "string"
	default:
		return "unknown"
	}
}

type Field struct {
	Name string
	Type FieldType
}

// Layout is the ordered list of fields a resource is encoded with.
type Layout []Field

var (
	BlockMetadataTag = model.NewStructTag(model.CoreCodeAddress, "block", "BlockMetadata")

	AccountTag = model.NewStructTag(model.CoreCodeAddress, "account", "Account")

	TimestampTag = model.NewStructTag(model.CoreCodeAddress, "timestamp", "CurrentTimeMicroseconds")

	ChainIDTag = model.NewStructTag(model.CoreCodeAddress, "chain_id", "ChainId")
)

// Names of the fields of the framework resources.
const (
	FieldHeight            = "height"
	FieldEpochInterval     = "epoch_interval"
	FieldAuthenticationKey = "authentication_key"
	FieldSequenceNumber    = "sequence_number"
	FieldMicroseconds      = "microseconds"
	FieldID                = "id"
)

// DefaultLayouts are the layouts of the framework resources stored under the core code address,
// keyed by the canonical form of their struct tag.
func DefaultLayouts() map[string]Layout {
	return map[string]Layout{
		BlockMetadataTag.String(): {
			{Name: FieldHeight, Type: FieldTypeU64},
			{Name: FieldEpochInterval, Type: FieldTypeU64},
		},
		AccountTag.String(): {
			{Name: FieldAuthenticationKey, Type: FieldTypeBytes},
			{Name: FieldSequenceNumber, Type: FieldTypeU64},
		},
		TimestampTag.String(): {
			{Name: FieldMicroseconds, Type: FieldTypeU64},
		},
		ChainIDTag.String(): {
			{Name: FieldID, Type: FieldTypeU8},
		},
	}
}
