package vm

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

var (
	ErrUnknownLayout = ierrors.New("no layout registered for struct tag")
	ErrFieldNotFound = ierrors.New("field not found")
	ErrFieldType     = ierrors.New("unexpected field type")
	ErrTrailingBytes = ierrors.New("trailing bytes after resource")
)

// Interpreter decodes raw state values into typed resources.
type Interpreter interface {
	Decode(tag model.StructTag, bytes []byte) (*Resource, error)
}

// LayoutRegistry is an Interpreter that knows the field layout of every struct it can decode.
// Integers are encoded little endian, variable length fields carry a uint32 length prefix.
type LayoutRegistry struct {
	layouts map[string]Layout
	mutex   syncutils.RWMutex

	optsLayouts map[string]Layout
}

func NewLayoutRegistry(opts ...options.Option[LayoutRegistry]) *LayoutRegistry {
	return options.Apply(&LayoutRegistry{
		layouts: DefaultLayouts(),
	}, opts, func(r *LayoutRegistry) {
		for tag, layout := range r.optsLayouts {
			r.layouts[tag] = layout
		}
	})
}

// WithLayout registers an additional layout next to the default ones.
func WithLayout(tag model.StructTag, layout Layout) options.Option[LayoutRegistry] {
	return func(r *LayoutRegistry) {
		if r.optsLayouts == nil {
			r.optsLayouts = make(map[string]Layout)
		}
		r.optsLayouts[tag.String()] = layout
	}
}

func (r *LayoutRegistry) RegisterLayout(tag model.StructTag, layout Layout) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.layouts[tag.String()] = layout
}

func (r *LayoutRegistry) Layout(tag model.StructTag) (Layout, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	layout, exists := r.layouts[tag.String()]

	return layout, exists
}

func (r *LayoutRegistry) Decode(tag model.StructTag, bytes []byte) (*Resource, error) {
	layout, exists := r.Layout(tag)
	if !exists {
		return nil, ierrors.Wrapf(ErrUnknownLayout, "failed to decode %s", tag)
	}

	m := marshalutil.New(bytes)
	resource := NewResource(tag)
	for _, field := range layout {
		value, err := readField(m, field.Type)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to decode field %s of %s", field.Name, tag)
		}
		resource.Set(field.Name, value)
	}

	if m.ReadOffset() != len(bytes) {
		return nil, ierrors.Wrapf(ErrTrailingBytes, "%d bytes left after decoding %s", len(bytes)-m.ReadOffset(), tag)
	}

	return resource, nil
}

// Encode is the inverse of Decode. Every field of the layout must be set on the resource.
func (r *LayoutRegistry) Encode(resource *Resource) ([]byte, error) {
	layout, exists := r.Layout(resource.Tag)
	if !exists {
		return nil, ierrors.Wrapf(ErrUnknownLayout, "failed to encode %s", resource.Tag)
	}

	m := marshalutil.New()
	for _, field := range layout {
		value, exists := resource.Field(field.Name)
		if !exists {
			return nil, ierrors.Wrapf(ErrFieldNotFound, "failed to encode %s: missing field %s", resource.Tag, field.Name)
		}

		if err := writeField(m, field.Type, value); err != nil {
			return nil, ierrors.Wrapf(err, "failed to encode field %s of %s", field.Name, resource.Tag)
		}
	}

	return m.Bytes(), nil
}

func readField(m *marshalutil.MarshalUtil, fieldType FieldType) (any, error) {
	switch fieldType {
	case FieldTypeBool:
		return m.ReadBool()
	case FieldTypeU8:
		return m.ReadUint8()
	case FieldTypeU64:
		value, err := m.ReadUint64()

		return model.U64(value), err
	case FieldTypeAddress:
		addressBytes, err := m.ReadBytes(model.AccountAddressLength)
		if err != nil {
			return nil, err
		}
		address, _, err := model.AccountAddressFromBytes(addressBytes)

		return address, err
	case FieldTypeBytes, FieldTypeString:
		length, err := m.ReadUint32()
		if err != nil {
			return nil, ierrors.Wrap(err, "failed to read length prefix")
		}

		value, err := m.ReadBytes(int(length))
		if err != nil {
			return nil, err
		}
		if fieldType == FieldTypeString {
			return string(value), nil
		}

		return append([]byte(nil), value...), nil
	default:
		return nil, ierrors.Errorf("unknown field type %d", fieldType)
	}
}

func writeField(m *marshalutil.MarshalUtil, fieldType FieldType, value any) error {
	switch fieldType {
	case FieldTypeBool:
		typedValue, ok := value.(bool)
		if !ok {
			return ierrors.Wrapf(ErrFieldType, "expected bool, got %T", value)
		}
		m.WriteBool(typedValue)
	case FieldTypeU8:
		typedValue, ok := value.(uint8)
		if !ok {
			return ierrors.Wrapf(ErrFieldType, "expected uint8, got %T", value)
		}
		m.WriteUint8(typedValue)
	case FieldTypeU64:
		typedValue, ok := value.(model.U64)
		if !ok {
			return ierrors.Wrapf(ErrFieldType, "expected model.U64, got %T", value)
		}
		m.WriteUint64(typedValue.Uint64())
	case FieldTypeAddress:
		typedValue, ok := value.(model.AccountAddress)
		if !ok {
			return ierrors.Wrapf(ErrFieldType, "expected model.AccountAddress, got %T", value)
		}
		m.WriteBytes(typedValue[:])
	case FieldTypeBytes:
		typedValue, ok := value.([]byte)
		if !ok {
			return ierrors.Wrapf(ErrFieldType, "expected []byte, got %T", value)
		}
		m.WriteUint32(uint32(len(typedValue)))
		m.WriteBytes(typedValue)
	case FieldTypeString:
		typedValue, ok := value.(string)
		if !ok {
			return ierrors.Wrapf(ErrFieldType, "expected string, got %T", value)
		}
		m.WriteUint32(uint32(len(typedValue)))
		m.WriteBytes([]byte(typedValue))
	default:
		return ierrors.Errorf("unknown field type %d", fieldType)
	}

	return nil
}
