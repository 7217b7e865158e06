package vm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

var coinStoreTag = model.NewStructTag(model.CoreCodeAddress, "coin", "CoinStore", "0x1::aptos_coin::AptosCoin")

var coinStoreLayout = vm.Layout{
	{Name: "coin", Type: vm.FieldTypeU64},
	{Name: "frozen", Type: vm.FieldTypeBool},
	{Name: "owner", Type: vm.FieldTypeAddress},
	{Name: "memo", Type: vm.FieldTypeString},
}

func TestLayoutRegistry_EncodeDecode(t *testing.T) {
	registry := vm.NewLayoutRegistry(vm.WithLayout(coinStoreTag, coinStoreLayout))

	resource := vm.NewResource(coinStoreTag).
		Set("coin", model.U64(1_000)).
		Set("frozen", true).
		Set("owner", model.AccountAddressFromUint64(10)).
		Set("memo", "savings")

	resourceBytes, err := registry.Encode(resource)
	require.NoError(t, err)

	decoded, err := registry.Decode(coinStoreTag, resourceBytes)
	require.NoError(t, err)
	require.Equal(t, 4, decoded.FieldCount())

	coin, err := decoded.U64("coin")
	require.NoError(t, err)
	require.EqualValues(t, 1_000, coin)

	frozen, err := decoded.Bool("frozen")
	require.NoError(t, err)
	require.True(t, frozen)

	owner, err := decoded.Address("owner")
	require.NoError(t, err)
	require.Equal(t, model.AccountAddressFromUint64(10), owner)

	memo, err := decoded.Str("memo")
	require.NoError(t, err)
	require.Equal(t, "savings", memo)

	// fields keep the order of the layout
	var names []string
	decoded.ForEachField(func(name string, _ any) bool {
		names = append(names, name)

		return true
	})
	require.Equal(t, []string{"coin", "frozen", "owner", "memo"}, names)
}

func TestLayoutRegistry_DecodeErrors(t *testing.T) {
	registry := vm.NewLayoutRegistry()

	_, err := registry.Decode(coinStoreTag, []byte{1})
	require.ErrorIs(t, err, vm.ErrUnknownLayout)

	metadataBytes, err := registry.Encode(vm.NewResource(vm.BlockMetadataTag).
		Set(vm.FieldHeight, model.U64(5)).
		Set(vm.FieldEpochInterval, model.U64(100)))
	require.NoError(t, err)

	_, err = registry.Decode(vm.BlockMetadataTag, append(metadataBytes, 0))
	require.ErrorIs(t, err, vm.ErrTrailingBytes)

	_, err = registry.Decode(vm.BlockMetadataTag, metadataBytes[:4])
	require.Error(t, err)

	metadata, err := registry.Decode(vm.BlockMetadataTag, metadataBytes)
	require.NoError(t, err)

	_, err = metadata.Bool(vm.FieldHeight)
	require.ErrorIs(t, err, vm.ErrFieldType)

	_, err = metadata.U64("round")
	require.ErrorIs(t, err, vm.ErrFieldNotFound)

	_, err = registry.Encode(vm.NewResource(vm.BlockMetadataTag).Set(vm.FieldHeight, model.U64(5)))
	require.ErrorIs(t, err, vm.ErrFieldNotFound)

	_, err = registry.Encode(vm.NewResource(vm.BlockMetadataTag).
		Set(vm.FieldHeight, uint64(5)).
		Set(vm.FieldEpochInterval, model.U64(100)))
	require.ErrorIs(t, err, vm.ErrFieldType)
}

func TestResource_MarshalJSON(t *testing.T) {
	resource := vm.NewResource(vm.AccountTag).
		Set(vm.FieldAuthenticationKey, []byte{0xab, 0xcd}).
		Set(vm.FieldSequenceNumber, model.U64(3))

	jsonBytes, err := json.Marshal(resource)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"0x1::account::Account","data":{"authentication_key":"0xabcd","sequence_number":"3"}}`, string(jsonBytes))
}

func TestResolver(t *testing.T) {
	registry := vm.NewLayoutRegistry()
	store := memstore.New(mapdb.NewMapDB())

	timestampBytes, err := registry.Encode(vm.NewResource(vm.TimestampTag).Set(vm.FieldMicroseconds, model.U64(77)))
	require.NoError(t, err)

	writeSet := model.WriteSet{{
		Key: model.ResourceStateKey(model.CoreCodeAddress, vm.TimestampTag),
		Op:  model.ValueWriteOp(timestampBytes),
	}}
	_, err = store.Commit([]*model.TransactionAndOutput{{
		Transaction: &model.GenesisTransaction{WriteSet: writeSet},
		Output:      &model.TransactionOutput{WriteSet: writeSet, Status: model.ExecutionSuccess()},
	}})
	require.NoError(t, err)

	view, err := store.LatestStateView()
	require.NoError(t, err)
	resolver := vm.NewResolver(view, registry)
	require.EqualValues(t, 0, resolver.Version())

	timestamp, exists, err := resolver.Resource(model.CoreCodeAddress, vm.TimestampTag)
	require.NoError(t, err)
	require.True(t, exists)
	microseconds, err := timestamp.U64(vm.FieldMicroseconds)
	require.NoError(t, err)
	require.EqualValues(t, 77, microseconds)

	_, exists, err = resolver.Resource(model.CoreCodeAddress, vm.ChainIDTag)
	require.NoError(t, err)
	require.False(t, exists)

	decoded, err := resolver.TryIntoResource(vm.TimestampTag, timestampBytes)
	require.NoError(t, err)
	decodedMicroseconds, err := decoded.U64(vm.FieldMicroseconds)
	require.NoError(t, err)
	require.Equal(t, microseconds, decodedMicroseconds)
}
