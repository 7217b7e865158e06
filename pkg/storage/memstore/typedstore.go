package memstore

import (
	"encoding/binary"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore"
)

type typedStore[K, V any] struct {
	name string
	kv   *kvstore.TypedStore[K, V]
}

func newTypedStore[K, V any](
	name string,
	kv kvstore.KVStore,
	keyToBytes kvstore.ObjectToBytes[K],
	bytesToKey kvstore.BytesToObject[K],
	vToBytes kvstore.ObjectToBytes[V],
	bytesToV kvstore.BytesToObject[V],
) *typedStore[K, V] {
	return &typedStore[K, V]{
		name: name,
		kv:   kvstore.NewTypedStore(kv, keyToBytes, bytesToKey, vToBytes, bytesToV),
	}
}

func (s *typedStore[K, V]) Load(key K) (value V, exists bool, err error) {
	value, err = s.kv.Get(key)
	if err != nil {
		var zeroValue V
		if ierrors.Is(err, kvstore.ErrKeyNotFound) {
			return zeroValue, false, nil
		}

		return zeroValue, false, ierrors.Wrapf(err, "failed to get %s for key %v", s.name, key)
	}

	return value, true, nil
}

func (s *typedStore[K, V]) Store(key K, value V) error {
	if err := s.kv.Set(key, value); err != nil {
		return ierrors.Wrapf(err, "failed to store %s for key %v", s.name, key)
	}

	return nil
}

func (s *typedStore[K, V]) Delete(key K) error {
	if err := s.kv.Delete(key); err != nil {
		return ierrors.Wrapf(err, "failed to delete %s for key %v", s.name, key)
	}

	return nil
}

func (s *typedStore[K, V]) Stream(consumer func(key K, value V) error) error {
	var innerErr error
	if storageErr := s.kv.Iterate(kvstore.EmptyPrefix, func(key K, value V) (advance bool) {
		innerErr = consumer(key, value)

		return innerErr == nil
	}); storageErr != nil {
		return ierrors.Wrapf(storageErr, "failed to iterate over %s", s.name)
	}

	if innerErr != nil {
		return ierrors.Wrapf(innerErr, "failed to stream %s", s.name)
	}

	return nil
}

// uint64 keys and values are big endian so that the byte order of the keys follows the numeric order.

func uint64Bytes(v uint64) ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, v), nil
}

func uint64FromBytes(bytes []byte) (uint64, int, error) {
	if len(bytes) < 8 {
		return 0, 0, ierrors.Errorf("not enough bytes to decode uint64: %d", len(bytes))
	}

	return binary.BigEndian.Uint64(bytes), 8, nil
}
