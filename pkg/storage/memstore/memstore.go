package memstore

import (
	"bytes"
	"sort"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/lo"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

const (
	transactionsPrefix byte = iota
	transactionInfosPrefix
	transactionOutputsPrefix
	accumulatorRootsPrefix
	transactionHashesPrefix
	accountTransactionsPrefix
	eventsPrefix
	stateValuesPrefix
	blockStartsPrefix
	ledgerInfoPrefix
)

const (
	stateValueDeleted byte = iota
	stateValueSet
)

var latestLedgerInfoKey = []byte{0}

// Store is a versioned ledger store on top of a kvstore.KVStore.
// Transactions are appended block by block through Commit and can be read back at any retained version.
type Store struct {
	transactions        *typedStore[model.Version, model.Transaction]
	transactionInfos    *typedStore[model.Version, *model.TransactionInfo]
	transactionOutputs  *typedStore[model.Version, *model.TransactionOutput]
	accumulatorRoots    *typedStore[model.Version, model.HashValue]
	transactionHashes   *typedStore[model.HashValue, model.Version]
	blockStarts         *typedStore[model.Version, uint64]
	ledgerInfo          *typedStore[[]byte, *model.LedgerInfoWithSignatures]
	accountTransactions kvstore.KVStore
	events              kvstore.KVStore
	stateValues         kvstore.KVStore

	// firstVersion and nextVersion are only meaningful if initialized is set.
	initialized  bool
	firstVersion model.Version
	nextVersion  model.Version
	latestRoot   model.HashValue
	epoch        uint64
	round        uint64
	blockID      model.HashValue
	timestamp    uint64
	mutex        syncutils.RWMutex

	optsRetainedVersions uint64
}

// New creates a Store that keeps its records in the given kvstore.
func New(kv kvstore.KVStore, opts ...options.Option[Store]) *Store {
	return options.Apply(&Store{}, opts, func(s *Store) {
		realm := func(prefix byte) kvstore.KVStore {
			return lo.PanicOnErr(kv.WithExtendedRealm(kvstore.Realm{prefix}))
		}

		s.transactions = newTypedStore("transaction", realm(transactionsPrefix),
			uint64Bytes, uint64FromBytes, model.Transaction.Bytes, model.TransactionFromBytes)
		s.transactionInfos = newTypedStore("transaction info", realm(transactionInfosPrefix),
			uint64Bytes, uint64FromBytes, (*model.TransactionInfo).Bytes, model.TransactionInfoFromBytes)
		s.transactionOutputs = newTypedStore("transaction output", realm(transactionOutputsPrefix),
			uint64Bytes, uint64FromBytes, (*model.TransactionOutput).Bytes, model.TransactionOutputFromBytes)
		s.accumulatorRoots = newTypedStore("accumulator root", realm(accumulatorRootsPrefix),
			uint64Bytes, uint64FromBytes, model.HashValue.Bytes, model.HashValueFromBytes)
		s.transactionHashes = newTypedStore("transaction hash", realm(transactionHashesPrefix),
			model.HashValue.Bytes, model.HashValueFromBytes, uint64Bytes, uint64FromBytes)
		s.blockStarts = newTypedStore("block start", realm(blockStartsPrefix),
			uint64Bytes, uint64FromBytes, uint64Bytes, uint64FromBytes)
		s.ledgerInfo = newTypedStore("ledger info", realm(ledgerInfoPrefix),
			rawBytes, rawBytesFromBytes, (*model.LedgerInfoWithSignatures).Bytes, model.LedgerInfoWithSignaturesFromBytes)
		s.accountTransactions = realm(accountTransactionsPrefix)
		s.events = realm(eventsPrefix)
		s.stateValues = realm(stateValuesPrefix)
	})
}

// WithRetainedVersions makes the store prune everything but the latest n versions after each commit.
func WithRetainedVersions(n uint64) options.Option[Store] {
	return func(s *Store) {
		s.optsRetainedVersions = n
	}
}

// Commit appends a block of executed transactions and returns the new signed ledger header.
func (s *Store) Commit(txns []*model.TransactionAndOutput, signatures ...*model.ValidatorSignature) (*model.LedgerInfoWithSignatures, error) {
	if len(txns) == 0 {
		return nil, ierrors.New("can not commit an empty block")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.initialized && txns[0].Transaction.Type() != model.TransactionTypeGenesis {
		return nil, ierrors.Errorf("the first transaction of a ledger must be a genesis transaction, got %s", txns[0].Transaction.Type())
	}

	for _, txn := range txns {
		if err := s.appendTransaction(s.nextVersion, txn); err != nil {
			return nil, ierrors.Wrapf(err, "failed to append transaction at version %d", s.nextVersion)
		}

		if !s.initialized {
			s.initialized = true
			s.firstVersion = s.nextVersion
		}
		s.nextVersion++
	}

	ledgerInfo := &model.LedgerInfoWithSignatures{
		LedgerInfo: model.LedgerInfo{
			Version:                    s.nextVersion - 1,
			TransactionAccumulatorHash: s.latestRoot,
			ConsensusBlockID:           s.blockID,
			Epoch:                      s.epoch,
			Round:                      s.round,
			TimestampUsecs:             s.timestamp,
		},
		Signatures: signatures,
	}
	if err := s.ledgerInfo.Store(latestLedgerInfoKey, ledgerInfo); err != nil {
		return nil, err
	}

	if s.optsRetainedVersions > 0 && s.nextVersion > s.firstVersion+s.optsRetainedVersions {
		if err := s.prune(s.nextVersion - s.optsRetainedVersions); err != nil {
			return nil, ierrors.Wrap(err, "failed to prune after commit")
		}
	}

	return ledgerInfo, nil
}

func (s *Store) appendTransaction(version model.Version, txn *model.TransactionAndOutput) error {
	info := &model.TransactionInfo{
		TransactionHash: txn.Transaction.Hash(),
		StateChangeHash: txn.Output.StateChangeHash(),
		EventRootHash:   txn.Output.EventRootHash(),
		GasUsed:         txn.Output.GasUsed,
		Status:          txn.Output.Status,
	}
	if txn.Transaction.Type() == model.TransactionTypeStateCheckpoint {
		checkpointHash := info.StateChangeHash
		info.StateCheckpointHash = &checkpointHash
	}

	root := model.AccumulateRoot(s.latestRoot, info.Hash())

	if err := s.transactions.Store(version, txn.Transaction); err != nil {
		return err
	}
	if err := s.transactionInfos.Store(version, info); err != nil {
		return err
	}
	if err := s.transactionOutputs.Store(version, txn.Output); err != nil {
		return err
	}
	if err := s.accumulatorRoots.Store(version, root); err != nil {
		return err
	}
	if err := s.transactionHashes.Store(info.TransactionHash, version); err != nil {
		return err
	}

	switch typedTxn := txn.Transaction.(type) {
	case *model.GenesisTransaction:
		if err := s.blockStarts.Store(version, 0); err != nil {
			return err
		}
		s.blockID = model.ZeroHash
	case *model.BlockMetadataTransaction:
		if err := s.blockStarts.Store(version, typedTxn.TimestampUsecs); err != nil {
			return err
		}
		s.blockID = typedTxn.ID
		s.epoch = typedTxn.Epoch
		s.round = typedTxn.Round
		s.timestamp = typedTxn.TimestampUsecs
	case *model.UserTransaction:
		if err := s.accountTransactions.Set(accountTransactionKey(typedTxn.Sender, typedTxn.SequenceNumber), lo.PanicOnErr(uint64Bytes(version))); err != nil {
			return ierrors.Wrapf(err, "failed to index transaction of %s", typedTxn.Sender)
		}
	}

	for _, event := range txn.Output.Events {
		eventBytes, err := (&model.EventWithVersion{TransactionVersion: version, Event: event}).Bytes()
		if err != nil {
			return ierrors.Wrapf(err, "failed to serialize event %s", event.Key)
		}

		if err := s.events.Set(eventIndexKey(event.Key, event.SequenceNumber), eventBytes); err != nil {
			return ierrors.Wrapf(err, "failed to store event %s", event.Key)
		}
	}

	for _, entry := range txn.Output.WriteSet {
		value := []byte{stateValueDeleted}
		if !entry.Op.IsDeletion() {
			value = append([]byte{stateValueSet}, entry.Op.Value...)
		}

		if err := s.stateValues.Set(stateValueKey(entry.Key, version), value); err != nil {
			return ierrors.Wrapf(err, "failed to store state value %s", entry.Key)
		}
	}

	s.latestRoot = root

	return nil
}

// Prune removes the transactions below the given version. State values and events are kept but are no
// longer readable below the oldest retained version.
func (s *Store) Prune(version model.Version) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.prune(version)
}

func (s *Store) prune(version model.Version) error {
	if !s.initialized {
		return ierrors.New("can not prune an empty ledger")
	}
	if version >= s.nextVersion {
		return ierrors.Errorf("can not prune up to version %d, latest version is %d", version, s.nextVersion-1)
	}

	for v := s.firstVersion; v < version; v++ {
		txn, exists, err := s.transactions.Load(v)
		if err != nil {
			return err
		}
		if exists {
			if err := s.transactionHashes.Delete(txn.Hash()); err != nil {
				return err
			}
		}

		if err := s.transactions.Delete(v); err != nil {
			return err
		}
		if err := s.transactionInfos.Delete(v); err != nil {
			return err
		}
		if err := s.transactionOutputs.Delete(v); err != nil {
			return err
		}
		if err := s.accumulatorRoots.Delete(v); err != nil {
			return err
		}
	}

	if version > s.firstVersion {
		s.firstVersion = version
	}

	return nil
}

func (s *Store) LatestLedgerInfo() (*model.LedgerInfoWithSignatures, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ledgerInfo, exists, err := s.ledgerInfo.Load(latestLedgerInfoKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		// a ledger that never ingested a transaction reports an empty header
		return &model.LedgerInfoWithSignatures{}, nil
	}

	return ledgerInfo, nil
}

func (s *Store) FirstTransactionVersion() (version model.Version, exists bool, err error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.firstVersion, s.initialized, nil
}

func (s *Store) StateViewAtVersion(version model.Version) (storage.StateView, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkReadable(version); err != nil {
		return nil, ierrors.Wrap(err, "failed to create state view")
	}

	return &stateView{store: s, version: version}, nil
}

func (s *Store) LatestStateView() (storage.StateView, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.initialized {
		return nil, ierrors.Wrap(storage.ErrNotFound, "failed to create state view of an empty ledger")
	}

	return &stateView{store: s, version: s.nextVersion - 1}, nil
}

func (s *Store) TransactionByVersion(version model.Version, ledgerVersion model.Version, fetchEvents bool) (*model.TransactionWithProof, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if version > ledgerVersion {
		return nil, ierrors.Wrapf(storage.ErrVersionAhead, "version %d is newer than ledger version %d", version, ledgerVersion)
	}

	return s.transactionWithProof(version, fetchEvents)
}

func (s *Store) TransactionByHash(hash model.HashValue, ledgerVersion model.Version, fetchEvents bool) (*model.TransactionWithProof, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	version, exists, err := s.transactionHashes.Load(hash)
	if err != nil {
		return nil, false, err
	}
	if !exists || version > ledgerVersion {
		return nil, false, nil
	}

	txn, err := s.transactionWithProof(version, fetchEvents)
	if err != nil {
		return nil, false, err
	}

	return txn, true, nil
}

func (s *Store) TransactionOutputs(start model.Version, limit uint64, ledgerVersion model.Version) (*model.TransactionOutputListWithProof, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := new(model.TransactionOutputListWithProof)
	if limit == 0 || start > ledgerVersion || !s.initialized || start >= s.nextVersion {
		return list, nil
	}
	if err := s.checkReadable(start); err != nil {
		return nil, err
	}

	end := min(start+limit-1, ledgerVersion, s.nextVersion-1)
	for version := start; version <= end; version++ {
		txn, err := s.loadTransaction(version)
		if err != nil {
			return nil, err
		}

		output, err := s.loadTransactionOutput(version)
		if err != nil {
			return nil, err
		}

		info, err := s.loadTransactionInfo(version)
		if err != nil {
			return nil, err
		}

		list.TransactionsAndOutputs = append(list.TransactionsAndOutputs, &model.TransactionAndOutput{Transaction: txn, Output: output})
		list.Proof.TransactionInfos = append(list.Proof.TransactionInfos, info)
	}
	list.FirstTransactionOutputVersion = &start

	return list, nil
}

func (s *Store) AccountTransactions(address model.AccountAddress, startSequenceNumber uint64, limit uint64, includeEvents bool, ledgerVersion model.Version) ([]*model.TransactionWithProof, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	txns := make([]*model.TransactionWithProof, 0)
	for sequenceNumber := startSequenceNumber; uint64(len(txns)) < limit; sequenceNumber++ {
		versionBytes, err := s.accountTransactions.Get(accountTransactionKey(address, sequenceNumber))
		if err != nil {
			if ierrors.Is(err, kvstore.ErrKeyNotFound) {
				break
			}

			return nil, ierrors.Wrapf(err, "failed to load transaction %d of %s", sequenceNumber, address)
		}

		version, _, err := uint64FromBytes(versionBytes)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to parse version of transaction %d of %s", sequenceNumber, address)
		}
		if version > ledgerVersion {
			break
		}
		if version < s.firstVersion {
			continue
		}

		txn, err := s.transactionWithProof(version, includeEvents)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)

		if sequenceNumber == ^uint64(0) {
			break
		}
	}

	return txns, nil
}

func (s *Store) Events(key model.EventKey, start uint64, order storage.Order, limit uint64) ([]*model.EventWithVersion, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := make([]*model.EventWithVersion, 0)
	for sequenceNumber, read := start, uint64(0); read < limit; read++ {
		eventBytes, err := s.events.Get(eventIndexKey(key, sequenceNumber))
		if err != nil {
			if ierrors.Is(err, kvstore.ErrKeyNotFound) {
				break
			}

			return nil, ierrors.Wrapf(err, "failed to load event %d of %s", sequenceNumber, key)
		}

		event, _, err := model.EventWithVersionFromBytes(eventBytes)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to parse event %d of %s", sequenceNumber, key)
		}
		if event.TransactionVersion >= s.firstVersion {
			events = append(events, event)
		}

		if order == storage.Descending {
			if sequenceNumber == 0 {
				break
			}
			sequenceNumber--
		} else {
			sequenceNumber++
		}
	}

	return events, nil
}

func (s *Store) BlockBoundaries(version model.Version, ledgerVersion model.Version) (start model.Version, end model.Version, err error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if version > ledgerVersion {
		return 0, 0, ierrors.Wrapf(storage.ErrVersionAhead, "version %d is newer than ledger version %d", version, ledgerVersion)
	}

	start, end, _, err = s.blockContaining(version)
	if err != nil {
		return 0, 0, err
	}
	if end > ledgerVersion {
		return 0, 0, ierrors.Wrapf(storage.ErrVersionAhead, "block [%d, %d] is not complete at ledger version %d", start, end, ledgerVersion)
	}

	return start, end, nil
}

func (s *Store) BlockTimestamp(version model.Version) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, _, timestamp, err := s.blockContaining(version)

	return timestamp, err
}

func (s *Store) AccumulatorRootHash(version model.Version) (model.HashValue, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkReadable(version); err != nil {
		return model.ZeroHash, err
	}

	return s.loadAccumulatorRoot(version)
}

func (s *Store) StateValuesByKeyPrefix(prefix model.StateKeyPrefix, version model.Version) ([]*model.StateKeyValue, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if err := s.checkReadable(version); err != nil {
		return nil, err
	}

	type latestValue struct {
		version model.Version
		value   []byte
	}
	latest := make(map[string]*latestValue)

	if err := s.stateValues.Iterate(kvstore.KeyPrefix(prefix), func(key kvstore.Key, value kvstore.Value) bool {
		keyBytes, valueVersion := splitStateValueKey(key)
		if valueVersion > version {
			return true
		}

		if current, exists := latest[string(keyBytes)]; !exists || current.version < valueVersion {
			latest[string(keyBytes)] = &latestValue{version: valueVersion, value: bytes.Clone(value)}
		}

		return true
	}); err != nil {
		return nil, ierrors.Wrapf(err, "failed to iterate state values at version %d", version)
	}

	stateKeyValues := make([]*model.StateKeyValue, 0, len(latest))
	for keyBytes, entry := range latest {
		if entry.value[0] == stateValueDeleted {
			continue
		}

		key, _, err := model.StateKeyFromBytes([]byte(keyBytes))
		if err != nil {
			return nil, ierrors.Wrap(err, "failed to parse state key")
		}

		stateKeyValues = append(stateKeyValues, &model.StateKeyValue{Key: key, Value: entry.value[1:]})
	}

	sort.Slice(stateKeyValues, func(i, j int) bool {
		return bytes.Compare(stateKeyValues[i].Key.Bytes(), stateKeyValues[j].Key.Bytes()) < 0
	})

	return stateKeyValues, nil
}

func (s *Store) stateValue(key model.StateKey, version model.Version) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var latestVersion model.Version
	var latestValue []byte
	if err := s.stateValues.Iterate(key.Bytes(), func(storedKey kvstore.Key, value kvstore.Value) bool {
		if _, valueVersion := splitStateValueKey(storedKey); valueVersion <= version && (latestValue == nil || valueVersion > latestVersion) {
			latestVersion = valueVersion
			latestValue = bytes.Clone(value)
		}

		return true
	}); err != nil {
		return nil, false, ierrors.Wrapf(err, "failed to read state value %s at version %d", key, version)
	}

	if latestValue == nil || latestValue[0] == stateValueDeleted {
		return nil, false, nil
	}

	return latestValue[1:], true, nil
}

func (s *Store) transactionWithProof(version model.Version, fetchEvents bool) (*model.TransactionWithProof, error) {
	if err := s.checkReadable(version); err != nil {
		return nil, err
	}

	txn, err := s.loadTransaction(version)
	if err != nil {
		return nil, err
	}

	info, err := s.loadTransactionInfo(version)
	if err != nil {
		return nil, err
	}

	previousRoot := model.ZeroHash
	if version > 0 {
		if previousRoot, err = s.loadAccumulatorRoot(version - 1); err != nil && !ierrors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	txnWithProof := &model.TransactionWithProof{
		Version:     version,
		Transaction: txn,
		Proof: &model.TransactionInfoWithProof{
			LedgerInfoToTransactionInfoProof: model.TransactionAccumulatorProof{PreviousRootHash: previousRoot},
			TransactionInfo:                  info,
		},
	}

	if fetchEvents {
		output, err := s.loadTransactionOutput(version)
		if err != nil {
			return nil, err
		}
		txnWithProof.Events = output.Events
	}

	return txnWithProof, nil
}

// blockContaining returns the boundaries and the timestamp of the block that contains version.
func (s *Store) blockContaining(version model.Version) (start model.Version, end model.Version, timestamp uint64, err error) {
	if !s.initialized || version >= s.nextVersion {
		return 0, 0, 0, ierrors.Wrapf(storage.ErrNotFound, "version %d is not committed", version)
	}

	found := false
	end = s.nextVersion - 1
	if err = s.blockStarts.Stream(func(blockStart model.Version, blockTimestamp uint64) error {
		switch {
		case blockStart <= version && (!found || blockStart > start):
			start, timestamp, found = blockStart, blockTimestamp, true
		case blockStart > version && blockStart-1 < end:
			end = blockStart - 1
		}

		return nil
	}); err != nil {
		return 0, 0, 0, err
	}

	if !found {
		return 0, 0, 0, ierrors.Wrapf(storage.ErrNotFound, "no block starts at or before version %d", version)
	}

	return start, end, timestamp, nil
}

func (s *Store) checkReadable(version model.Version) error {
	if !s.initialized || version >= s.nextVersion {
		return ierrors.Wrapf(storage.ErrNotFound, "version %d is not committed", version)
	}
	if version < s.firstVersion {
		return ierrors.Wrapf(storage.ErrPruned, "version %d is older than the oldest retained version %d", version, s.firstVersion)
	}

	return nil
}

func (s *Store) loadTransaction(version model.Version) (model.Transaction, error) {
	return load(s.transactions, version)
}

func (s *Store) loadTransactionInfo(version model.Version) (*model.TransactionInfo, error) {
	return load(s.transactionInfos, version)
}

func (s *Store) loadTransactionOutput(version model.Version) (*model.TransactionOutput, error) {
	return load(s.transactionOutputs, version)
}

func (s *Store) loadAccumulatorRoot(version model.Version) (model.HashValue, error) {
	return load(s.accumulatorRoots, version)
}

func load[V any](store *typedStore[model.Version, V], version model.Version) (V, error) {
	value, exists, err := store.Load(version)
	if err != nil {
		return value, err
	}
	if !exists {
		return value, ierrors.Wrapf(storage.ErrNotFound, "no %s at version %d", store.name, version)
	}

	return value, nil
}

func accountTransactionKey(address model.AccountAddress, sequenceNumber uint64) []byte {
	return append(lo.PanicOnErr(address.Bytes()), lo.PanicOnErr(uint64Bytes(sequenceNumber))...)
}

func eventIndexKey(key model.EventKey, sequenceNumber uint64) []byte {
	return append(key.Bytes(), lo.PanicOnErr(uint64Bytes(sequenceNumber))...)
}

func stateValueKey(key model.StateKey, version model.Version) []byte {
	return append(key.Bytes(), lo.PanicOnErr(uint64Bytes(version))...)
}

func splitStateValueKey(key []byte) ([]byte, model.Version) {
	versionOffset := len(key) - 8

	return key[:versionOffset], lo.Return1(uint64FromBytes(key[versionOffset:]))
}

func rawBytes(key []byte) ([]byte, error) {
	return key, nil
}

func rawBytesFromBytes(bytes []byte) ([]byte, int, error) {
	return bytes, len(bytes), nil
}
