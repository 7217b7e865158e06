package requesthandler

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

// BlockInfo reconstructs the block that contains version as seen at ledgerVersion.
func (r *RequestHandler) BlockInfo(version model.Version, ledgerVersion model.Version) (*model.BlockInfo, error) {
	r.optsServerMetrics.BlockLookups.Inc()

	start, end, err := r.reader.BlockBoundaries(version, ledgerVersion)
	if err != nil {
		return nil, joinCause(ErrBlockNotFound, err, "failed to find block of version %d at ledger version %d", version, ledgerVersion)
	}

	txn, err := r.reader.TransactionByVersion(start, ledgerVersion, false)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load first transaction %d of block", start)
	}

	switch boundary := txn.Transaction.(type) {
	case *model.GenesisTransaction:
		return model.NewBlockInfo(0, start, end, model.ZeroHash, 0), nil

	case *model.BlockMetadataTransaction:
		height, err := r.blockHeight(txn, ledgerVersion)
		if err != nil {
			return nil, err
		}

		return model.NewBlockInfo(height, start, end, boundary.ID, boundary.TimestampUsecs), nil

	default:
		r.optsServerMetrics.MalformedBlocks.Inc()
		r.LogError("block does not start with a genesis or block metadata transaction", "version", start, "type", txn.Transaction.Type())

		return nil, ierrors.Wrapf(ErrMalformedLedger, "transaction %d starts a block but is a %s transaction", start, txn.Transaction.Type())
	}
}

// BlockTimestamp returns the timestamp in microseconds of the block that contains version.
func (r *RequestHandler) BlockTimestamp(version model.Version) (uint64, error) {
	timestamp, err := r.reader.BlockTimestamp(version)
	if err != nil {
		return 0, joinCause(ErrStorageUnavailable, err, "failed to load timestamp of block containing %d", version)
	}

	return timestamp, nil
}

// blockHeight decodes the height from the block metadata resource written by the boundary transaction.
func (r *RequestHandler) blockHeight(boundary *model.TransactionWithProof, ledgerVersion model.Version) (uint64, error) {
	resolver, err := r.ResolverAt(ledgerVersion)
	if err != nil {
		return 0, err
	}

	output, err := r.transactionOutput(boundary, ledgerVersion)
	if err != nil {
		return 0, err
	}

	blockMetadataKey := model.ResourceStateKey(model.CoreCodeAddress, vm.BlockMetadataTag)
	for _, change := range output.WriteSet {
		if change.Op.IsDeletion() || !change.Key.Equal(blockMetadataKey) {
			continue
		}

		resource, err := resolver.TryIntoResource(vm.BlockMetadataTag, change.Op.Value)
		if err != nil {
			r.LogWarn("failed to decode block metadata", "version", boundary.Version, "err", err)

			return 0, joinCause(ErrBlockHeightUnavailable, err, "failed to decode block metadata written at version %d", boundary.Version)
		}

		height, err := resource.U64(vm.FieldHeight)
		if err != nil {
			return 0, joinCause(ErrBlockHeightUnavailable, err, "block metadata written at version %d has no height", boundary.Version)
		}

		return height.Uint64(), nil
	}

	return 0, ierrors.Wrapf(ErrBlockHeightUnavailable, "transaction %d does not write the block metadata resource", boundary.Version)
}
