package vm

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/iotaledger/hive.go/ds/orderedmap"
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

// Resource is a decoded on-chain struct. Fields keep the order of their layout.
//
// Field values are bool, uint8, model.U64, model.AccountAddress, []byte or string.
type Resource struct {
	Tag    model.StructTag
	fields *orderedmap.OrderedMap[string, any]
}

func NewResource(tag model.StructTag) *Resource {
	return &Resource{
		Tag:    tag,
		fields: orderedmap.New[string, any](),
	}
}

// Set assigns a field and returns the resource so that calls can be chained.
func (r *Resource) Set(name string, value any) *Resource {
	r.fields.Set(name, value)

	return r
}

func (r *Resource) Field(name string) (value any, exists bool) {
	return r.fields.Get(name)
}

func (r *Resource) FieldCount() int {
	return r.fields.Size()
}

func (r *Resource) ForEachField(consumer func(name string, value any) bool) {
	r.fields.ForEach(consumer)
}

func (r *Resource) U64(name string) (model.U64, error) {
	return typedField[model.U64](r, name)
}

func (r *Resource) U8(name string) (uint8, error) {
	return typedField[uint8](r, name)
}

func (r *Resource) Bool(name string) (bool, error) {
	return typedField[bool](r, name)
}

func (r *Resource) Address(name string) (model.AccountAddress, error) {
	return typedField[model.AccountAddress](r, name)
}

func (r *Resource) Bytes(name string) ([]byte, error) {
	return typedField[[]byte](r, name)
}

func (r *Resource) Str(name string) (string, error) {
	return typedField[string](r, name)
}

func typedField[T any](r *Resource, name string) (T, error) {
	var zero T

	value, exists := r.fields.Get(name)
	if !exists {
		return zero, ierrors.Wrapf(ErrFieldNotFound, "%s has no field %s", r.Tag, name)
	}

	typedValue, ok := value.(T)
	if !ok {
		return zero, ierrors.Wrapf(ErrFieldType, "field %s of %s is %T, expected %T", name, r.Tag, value, zero)
	}

	return typedValue, nil
}

// MarshalJSON renders the resource as {"type": tag, "data": {fields in layout order}}.
func (r *Resource) MarshalJSON() ([]byte, error) {
	var data bytes.Buffer
	data.WriteByte('{')

	var err error
	first := true
	r.fields.ForEach(func(name string, value any) bool {
		var nameBytes, valueBytes []byte
		if nameBytes, err = json.Marshal(name); err != nil {
			return false
		}

		if raw, isBytes := value.([]byte); isBytes {
			value = "0x" + hex.EncodeToString(raw)
		}
		if valueBytes, err = json.Marshal(value); err != nil {
			err = ierrors.Wrapf(err, "failed to marshal field %s", name)

			return false
		}

		if !first {
			data.WriteByte(',')
		}
		first = false

		data.Write(nameBytes)
		data.WriteByte(':')
		data.Write(valueBytes)

		return true
	})
	if err != nil {
		return nil, err
	}

	data.WriteByte('}')

	return json.Marshal(struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}{
		Type: r.Tag.String(),
		Data: data.Bytes(),
	})
}

func (r *Resource) String() string {
	fields := make([]*stringify.StructField, 0, r.fields.Size())
	r.fields.ForEach(func(name string, value any) bool {
		fields = append(fields, stringify.NewStructField(name, value))

		return true
	})

	return stringify.Struct(r.Tag.String(), fields...)
}
