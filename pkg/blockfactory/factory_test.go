package blockfactory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

func decodeWrite(t *testing.T, registry *vm.LayoutRegistry, writeSet model.WriteSet, address model.AccountAddress, tag model.StructTag) *vm.Resource {
	key := model.ResourceStateKey(address, tag)
	for _, entry := range writeSet {
		if entry.Key.Equal(key) {
			resource, err := registry.Decode(tag, entry.Op.Value)
			require.NoError(t, err)

			return resource
		}
	}

	t.Fatalf("write set does not contain %s", key)

	return nil
}

func TestFactory_Genesis(t *testing.T) {
	registry := vm.NewLayoutRegistry()
	account := blockfactory.Account{Address: model.AccountAddressFromUint64(10), AuthenticationKey: []byte{7}}
	factory := blockfactory.New(3, registry,
		blockfactory.WithGenesisAccounts(account),
		blockfactory.WithEpochInterval(1_000),
		blockfactory.WithGenesisTime(time.UnixMicro(500)),
	)

	genesis, err := factory.Genesis()
	require.NoError(t, err)
	require.Equal(t, model.TransactionTypeGenesis, genesis.Transaction.Type())
	require.Len(t, genesis.Output.WriteSet, 4)
	require.EqualValues(t, 0, factory.Height())
	require.EqualValues(t, 3, factory.ChainID())

	metadata := decodeWrite(t, registry, genesis.Output.WriteSet, model.CoreCodeAddress, vm.BlockMetadataTag)
	height, err := metadata.U64(vm.FieldHeight)
	require.NoError(t, err)
	require.EqualValues(t, 0, height)
	epochInterval, err := metadata.U64(vm.FieldEpochInterval)
	require.NoError(t, err)
	require.EqualValues(t, 1_000, epochInterval)

	timestamp := decodeWrite(t, registry, genesis.Output.WriteSet, model.CoreCodeAddress, vm.TimestampTag)
	microseconds, err := timestamp.U64(vm.FieldMicroseconds)
	require.NoError(t, err)
	require.EqualValues(t, 500, microseconds)

	chainID := decodeWrite(t, registry, genesis.Output.WriteSet, model.CoreCodeAddress, vm.ChainIDTag)
	id, err := chainID.U8(vm.FieldID)
	require.NoError(t, err)
	require.EqualValues(t, 3, id)

	accountResource := decodeWrite(t, registry, genesis.Output.WriteSet, account.Address, vm.AccountTag)
	authKey, err := accountResource.Bytes(vm.FieldAuthenticationKey)
	require.NoError(t, err)
	require.Equal(t, account.AuthenticationKey, authKey)
}

func TestFactory_CreateBlock(t *testing.T) {
	registry := vm.NewLayoutRegistry()
	factory := blockfactory.New(3, registry)
	_, err := factory.Genesis()
	require.NoError(t, err)

	sender := model.AccountAddressFromUint64(10)
	txn := &model.SignedTransaction{Sender: sender, SequenceNumber: 4, ChainID: 3}
	blockID := model.HashData([]byte("block"))

	block, err := factory.CreateBlock(
		blockfactory.WithID(blockID),
		blockfactory.WithHeight(9),
		blockfactory.WithRound(12),
		blockfactory.WithEpoch(2),
		blockfactory.WithProposer(model.AccountAddressFromUint64(1)),
		blockfactory.WithFailedProposerIndices(0, 3),
		blockfactory.WithTimestamp(time.UnixMicro(1_234)),
		blockfactory.WithTransactions(txn),
		blockfactory.WithStateCheckpoint(),
	)
	require.NoError(t, err)
	require.Len(t, block, 3)
	require.EqualValues(t, 9, factory.Height())

	metadataTxn, isMetadata := block[0].Transaction.(*model.BlockMetadataTransaction)
	require.True(t, isMetadata)
	require.Equal(t, blockID, metadataTxn.ID)
	require.EqualValues(t, 12, metadataTxn.Round)
	require.EqualValues(t, 2, metadataTxn.Epoch)
	require.EqualValues(t, 1_234, metadataTxn.TimestampUsecs)
	require.Equal(t, []uint32{0, 3}, metadataTxn.FailedProposerIndices)

	metadata := decodeWrite(t, registry, block[0].Output.WriteSet, model.CoreCodeAddress, vm.BlockMetadataTag)
	height, err := metadata.U64(vm.FieldHeight)
	require.NoError(t, err)
	require.EqualValues(t, 9, height)
	require.Len(t, block[0].Output.Events, 1)
	require.Equal(t, model.NewEventKey(blockfactory.NewBlockEventCreationNumber, model.CoreCodeAddress), block[0].Output.Events[0].Key)

	require.Equal(t, model.TransactionTypeUser, block[1].Transaction.Type())
	accountResource := decodeWrite(t, registry, block[1].Output.WriteSet, sender, vm.AccountTag)
	sequenceNumber, err := accountResource.U64(vm.FieldSequenceNumber)
	require.NoError(t, err)
	require.EqualValues(t, 5, sequenceNumber)
	require.EqualValues(t, 4, block[1].Output.Events[0].SequenceNumber)

	checkpoint, isCheckpoint := block[2].Transaction.(*model.StateCheckpointTransaction)
	require.True(t, isCheckpoint)
	require.Equal(t, blockID, checkpoint.BlockID)

	// heights and new block events continue from the previous block
	next, err := factory.CreateBlock()
	require.NoError(t, err)
	require.Len(t, next, 1)
	require.EqualValues(t, 10, factory.Height())
	require.EqualValues(t, 1, next[0].Output.Events[0].SequenceNumber)
	require.EqualValues(t, 13, next[0].Transaction.(*model.BlockMetadataTransaction).Round)
}

func TestFactory_WithoutHeightUpdate(t *testing.T) {
	registry := vm.NewLayoutRegistry()
	factory := blockfactory.New(3, registry)
	_, err := factory.Genesis()
	require.NoError(t, err)

	block, err := factory.CreateBlock(blockfactory.WithoutHeightUpdate())
	require.NoError(t, err)

	metadataKey := model.ResourceStateKey(model.CoreCodeAddress, vm.BlockMetadataTag)
	for _, entry := range block[0].Output.WriteSet {
		require.False(t, entry.Key.Equal(metadataKey))
	}
}
