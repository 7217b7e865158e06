package blockfactory

import (
	"time"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

const (
	// NewBlockEventCreationNumber is the creation number of the event handle under the core code address that
	// receives one event per block.
	NewBlockEventCreationNumber uint64 = 3

	// SequenceNumberEventCreationNumber is the creation number of the event handle of every account that receives
	// one event per committed user transaction.
	SequenceNumberEventCreationNumber uint64 = 0

	NewBlockEventType       = "0x1::block::NewBlockEvent"
	SequenceNumberEventType = "0x1::account::SequenceNumberEvent"

	defaultEpochInterval uint64 = 7200 * 1000 * 1000
	userTransactionGas   uint64 = 7
)

// Account is an account that exists from genesis on.
type Account struct {
	Address           model.AccountAddress
	AuthenticationKey []byte
}

// Factory produces executed blocks, i.e. transactions together with the outputs they would have after execution,
// so that a ledger store can be populated without running a VM.
type Factory struct {
	chainID  model.ChainID
	registry *vm.LayoutRegistry

	height         uint64
	round          uint64
	epoch          uint64
	authKeys       map[model.AccountAddress][]byte
	newBlockEvents uint64
	mutex          syncutils.Mutex

	optsEpochInterval   uint64
	optsGenesisAccounts []Account
	optsGenesisTime     time.Time
}

func New(chainID model.ChainID, registry *vm.LayoutRegistry, opts ...options.Option[Factory]) *Factory {
	return options.Apply(&Factory{
		chainID:           chainID,
		registry:          registry,
		authKeys:          make(map[model.AccountAddress][]byte),
		optsEpochInterval: defaultEpochInterval,
	}, opts)
}

// WithEpochInterval sets the epoch interval in microseconds that genesis writes into the block metadata resource.
func WithEpochInterval(interval uint64) options.Option[Factory] {
	return func(f *Factory) {
		f.optsEpochInterval = interval
	}
}

func WithGenesisAccounts(accounts ...Account) options.Option[Factory] {
	return func(f *Factory) {
		f.optsGenesisAccounts = append(f.optsGenesisAccounts, accounts...)
	}
}

// WithGenesisTime sets the value of the on-chain clock after genesis. The genesis block itself always has timestamp 0.
func WithGenesisTime(genesisTime time.Time) options.Option[Factory] {
	return func(f *Factory) {
		f.optsGenesisTime = genesisTime
	}
}

func (f *Factory) ChainID() model.ChainID {
	return f.chainID
}

// Height returns the height of the last produced block.
func (f *Factory) Height() uint64 {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.height
}

// Genesis creates the genesis transaction. It writes the chain id, the block metadata resource with height 0,
// the on-chain clock and the genesis accounts.
func (f *Factory) Genesis() (*model.TransactionAndOutput, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var genesisMicros uint64
	if !f.optsGenesisTime.IsZero() {
		genesisMicros = uint64(f.optsGenesisTime.UnixMicro())
	}

	writeSet := make(model.WriteSet, 0, 3+len(f.optsGenesisAccounts))
	for _, resource := range []*vm.Resource{
		vm.NewResource(vm.ChainIDTag).Set(vm.FieldID, uint8(f.chainID)),
		f.blockMetadata(0),
		vm.NewResource(vm.TimestampTag).Set(vm.FieldMicroseconds, model.U64(genesisMicros)),
	} {
		entry, err := f.resourceWrite(model.CoreCodeAddress, resource)
		if err != nil {
			return nil, err
		}
		writeSet = append(writeSet, entry)
	}

	for _, account := range f.optsGenesisAccounts {
		f.authKeys[account.Address] = account.AuthenticationKey

		entry, err := f.resourceWrite(account.Address, f.account(account.Address, 0))
		if err != nil {
			return nil, err
		}
		writeSet = append(writeSet, entry)
	}

	f.height = 0
	f.round = 0
	f.epoch = 0

	return &model.TransactionAndOutput{
		Transaction: &model.GenesisTransaction{WriteSet: writeSet},
		Output: &model.TransactionOutput{
			WriteSet: writeSet,
			Status:   model.ExecutionSuccess(),
		},
	}, nil
}

// CreateBlock creates the next block: a block metadata transaction followed by the given user transactions and an
// optional state checkpoint.
func (f *Factory) CreateBlock(opts ...options.Option[BlockParams]) ([]*model.TransactionAndOutput, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	params := options.Apply(&BlockParams{}, opts)

	timestamp := time.Now()
	if params.Timestamp != nil {
		timestamp = *params.Timestamp
	}

	round := f.round + 1
	if params.Round != nil {
		round = *params.Round
	}

	epoch := f.epoch
	if params.Epoch != nil {
		epoch = *params.Epoch
	}

	height := f.height + 1
	if params.Height != nil {
		height = *params.Height
	}
	id := blockID(height, round, timestamp)
	if params.ID != nil {
		id = *params.ID
	}

	metadata := &model.BlockMetadataTransaction{
		ID:                    id,
		Epoch:                 epoch,
		Round:                 round,
		Proposer:              params.Proposer,
		FailedProposerIndices: params.FailedProposerIndices,
		TimestampUsecs:        uint64(timestamp.UnixMicro()),
	}

	metadataOutput, err := f.blockMetadataOutput(metadata, height, params.SkipHeightUpdate)
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to create block metadata output of block %d", height)
	}

	block := []*model.TransactionAndOutput{{Transaction: metadata, Output: metadataOutput}}
	for _, txn := range params.Transactions {
		output, err := f.userTransactionOutput(txn)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to create output of transaction %s", txn.Hash())
		}

		block = append(block, &model.TransactionAndOutput{Transaction: &model.UserTransaction{SignedTransaction: txn}, Output: output})
	}

	if params.StateCheckpoint {
		block = append(block, &model.TransactionAndOutput{
			Transaction: &model.StateCheckpointTransaction{BlockID: id},
			Output:      &model.TransactionOutput{Status: model.ExecutionSuccess()},
		})
	}

	f.height = height
	f.round = round
	f.epoch = epoch

	return block, nil
}

func (f *Factory) blockMetadataOutput(metadata *model.BlockMetadataTransaction, height uint64, skipHeightUpdate bool) (*model.TransactionOutput, error) {
	timestampWrite, err := f.resourceWrite(model.CoreCodeAddress, vm.NewResource(vm.TimestampTag).Set(vm.FieldMicroseconds, model.U64(metadata.TimestampUsecs)))
	if err != nil {
		return nil, err
	}

	writeSet := model.WriteSet{timestampWrite}
	if !skipHeightUpdate {
		heightWrite, err := f.resourceWrite(model.CoreCodeAddress, f.blockMetadata(height))
		if err != nil {
			return nil, err
		}
		writeSet = append(model.WriteSet{heightWrite}, writeSet...)
	}

	eventData := marshalutil.New()
	eventData.WriteUint64(height)
	eventData.WriteUint64(metadata.Round)
	eventData.WriteUint64(metadata.TimestampUsecs)

	event := &model.ContractEvent{
		Key:            model.NewEventKey(NewBlockEventCreationNumber, model.CoreCodeAddress),
		SequenceNumber: f.newBlockEvents,
		TypeTag:        NewBlockEventType,
		Data:           eventData.Bytes(),
	}
	f.newBlockEvents++

	return &model.TransactionOutput{
		WriteSet: writeSet,
		Events:   []*model.ContractEvent{event},
		Status:   model.ExecutionSuccess(),
	}, nil
}

func (f *Factory) userTransactionOutput(txn *model.SignedTransaction) (*model.TransactionOutput, error) {
	nextSequenceNumber := txn.SequenceNumber + 1

	accountWrite, err := f.resourceWrite(txn.Sender, f.account(txn.Sender, nextSequenceNumber))
	if err != nil {
		return nil, err
	}

	eventData := marshalutil.New()
	eventData.WriteUint64(nextSequenceNumber)

	return &model.TransactionOutput{
		WriteSet: model.WriteSet{accountWrite},
		Events: []*model.ContractEvent{{
			Key:            model.NewEventKey(SequenceNumberEventCreationNumber, txn.Sender),
			SequenceNumber: txn.SequenceNumber,
			TypeTag:        SequenceNumberEventType,
			Data:           eventData.Bytes(),
		}},
		GasUsed: userTransactionGas,
		Status:  model.ExecutionSuccess(),
	}, nil
}

func (f *Factory) blockMetadata(height uint64) *vm.Resource {
	return vm.NewResource(vm.BlockMetadataTag).
		Set(vm.FieldHeight, model.U64(height)).
		Set(vm.FieldEpochInterval, model.U64(f.optsEpochInterval))
}

func (f *Factory) account(address model.AccountAddress, sequenceNumber uint64) *vm.Resource {
	authKey, exists := f.authKeys[address]
	if !exists {
		authKey = address[:]
	}

	return vm.NewResource(vm.AccountTag).
		Set(vm.FieldAuthenticationKey, authKey).
		Set(vm.FieldSequenceNumber, model.U64(sequenceNumber))
}

func (f *Factory) resourceWrite(address model.AccountAddress, resource *vm.Resource) (*model.WriteSetEntry, error) {
	value, err := f.registry.Encode(resource)
	if err != nil {
		return nil, err
	}

	return &model.WriteSetEntry{
		Key: model.ResourceStateKey(address, resource.Tag),
		Op:  model.ValueWriteOp(value),
	}, nil
}

func blockID(height uint64, round uint64, timestamp time.Time) model.HashValue {
	m := marshalutil.New()
	m.WriteUint64(height)
	m.WriteUint64(round)
	m.WriteUint64(uint64(timestamp.UnixNano()))

	return model.HashData([]byte("BlockID::"), m.Bytes())
}
