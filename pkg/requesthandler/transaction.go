package requesthandler

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

// TransactionByVersion returns the transaction committed at version as seen at ledgerVersion.
func (r *RequestHandler) TransactionByVersion(version model.Version, ledgerVersion model.Version) (*model.TransactionOnChainData, error) {
	txn, err := r.reader.TransactionByVersion(version, ledgerVersion, true)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load transaction %d at ledger version %d", version, ledgerVersion)
	}

	return r.materialize(txn, ledgerVersion)
}

// TransactionByHash returns the committed transaction with the given hash, or nil if the ledger does not know it.
func (r *RequestHandler) TransactionByHash(hash model.HashValue, ledgerVersion model.Version) (*model.TransactionOnChainData, error) {
	txn, exists, err := r.reader.TransactionByHash(hash, ledgerVersion, true)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load transaction %s at ledger version %d", hash, ledgerVersion)
	}
	if !exists {
		return nil, nil
	}

	return r.materialize(txn, ledgerVersion)
}

// Transactions returns up to limit consecutive transactions starting at start. The result ends early at ledgerVersion.
func (r *RequestHandler) Transactions(start model.Version, limit uint16, ledgerVersion model.Version) ([]*model.TransactionOnChainData, error) {
	if limit == 0 || start > ledgerVersion {
		return make([]*model.TransactionOnChainData, 0), nil
	}

	outputs, err := r.reader.TransactionOutputs(start, uint64(limit), ledgerVersion)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load transactions [%d, +%d) at ledger version %d", start, limit, ledgerVersion)
	}

	if outputs.FirstTransactionOutputVersion == nil {
		return nil, r.dataIntegrityError("transaction output list starting at %d carries no first version", start)
	}
	if firstVersion := *outputs.FirstTransactionOutputVersion; firstVersion != start {
		return nil, r.dataIntegrityError("transaction output list starts at version %d, requested %d", firstVersion, start)
	}

	txns, infos := outputs.TransactionsAndOutputs, outputs.Proof.TransactionInfos
	if len(txns) != len(infos) {
		return nil, r.dataIntegrityError("transaction output list starting at %d has %d transactions but %d infos", start, len(txns), len(infos))
	}
	if uint64(len(txns)) > uint64(limit) {
		return nil, r.dataIntegrityError("transaction output list starting at %d has %d entries, requested at most %d", start, len(txns), limit)
	}

	previousRoot, err := r.previousAccumulatorRoot(start)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load accumulator root of version %d", start-1)
	}

	records := make([]*model.TransactionOnChainData, 0, len(txns))
	for i, txn := range txns {
		version := start + uint64(i)
		if version > ledgerVersion {
			return nil, r.dataIntegrityError("transaction output list starting at %d exceeds ledger version %d", start, ledgerVersion)
		}

		root, err := r.reader.AccumulatorRootHash(version)
		if err != nil {
			return nil, joinCause(ErrStorageUnavailable, err, "failed to load accumulator root of version %d", version)
		}

		records = append(records, model.NewTransactionOnChainData(&model.TransactionWithProof{
			Version:     version,
			Transaction: txn.Transaction,
			Proof: &model.TransactionInfoWithProof{
				LedgerInfoToTransactionInfoProof: model.TransactionAccumulatorProof{PreviousRootHash: previousRoot},
				TransactionInfo:                  infos[i],
			},
		}, root, txn.Output))

		previousRoot = root
	}
	r.optsServerMetrics.MaterializedTransactions.Add(uint64(len(records)))

	return records, nil
}

// AccumulatorRootHash returns the root of the transaction accumulator after applying version.
func (r *RequestHandler) AccumulatorRootHash(version model.Version) (model.HashValue, error) {
	root, err := r.reader.AccumulatorRootHash(version)
	if err != nil {
		return model.ZeroHash, joinCause(ErrStorageUnavailable, err, "failed to load accumulator root of version %d", version)
	}

	return root, nil
}

// materialize folds a transaction with proof, its single output and the accumulator root into one record.
func (r *RequestHandler) materialize(txn *model.TransactionWithProof, ledgerVersion model.Version) (*model.TransactionOnChainData, error) {
	output, err := r.transactionOutput(txn, ledgerVersion)
	if err != nil {
		return nil, err
	}

	root, err := r.reader.AccumulatorRootHash(txn.Version)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load accumulator root of version %d", txn.Version)
	}
	r.optsServerMetrics.MaterializedTransactions.Inc()

	return model.NewTransactionOnChainData(txn, root, output), nil
}

// transactionOutput loads the single output of txn and checks that it belongs to it.
func (r *RequestHandler) transactionOutput(txn *model.TransactionWithProof, ledgerVersion model.Version) (*model.TransactionOutput, error) {
	if txn.Proof == nil || txn.Proof.TransactionInfo == nil {
		return nil, r.dataIntegrityError("transaction %d carries no transaction info", txn.Version)
	}
	if txn.Version > ledgerVersion {
		return nil, r.dataIntegrityError("transaction %d is newer than ledger version %d", txn.Version, ledgerVersion)
	}

	outputs, err := r.reader.TransactionOutputs(txn.Version, 1, ledgerVersion)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load output of transaction %d", txn.Version)
	}
	if len(outputs.TransactionsAndOutputs) != 1 {
		return nil, r.dataIntegrityError("expected exactly one output for transaction %d, got %d", txn.Version, len(outputs.TransactionsAndOutputs))
	}
	if outputs.FirstTransactionOutputVersion == nil || *outputs.FirstTransactionOutputVersion != txn.Version {
		return nil, r.dataIntegrityError("output of transaction %d belongs to another version", txn.Version)
	}

	return outputs.TransactionsAndOutputs[0].Output, nil
}

// previousAccumulatorRoot returns the root before version. It is zero for genesis and for pruned predecessors.
func (r *RequestHandler) previousAccumulatorRoot(version model.Version) (model.HashValue, error) {
	if version == 0 {
		return model.ZeroHash, nil
	}

	root, err := r.reader.AccumulatorRootHash(version - 1)
	if err != nil {
		if ierrors.Is(err, storage.ErrPruned) || ierrors.Is(err, storage.ErrNotFound) {
			return model.ZeroHash, nil
		}

		return model.ZeroHash, err
	}

	return root, nil
}

func (r *RequestHandler) dataIntegrityError(format string, args ...any) error {
	r.optsServerMetrics.DataIntegrityFailures.Inc()

	err := ierrors.Wrapf(ErrDataIntegrity, format, args...)
	r.LogError("ledger store returned inconsistent data", "err", err)

	return err
}
