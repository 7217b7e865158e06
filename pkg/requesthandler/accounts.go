package requesthandler

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

// AccountTransactions returns up to limit transactions sent by address, starting at sequence number startSeq.
func (r *RequestHandler) AccountTransactions(address model.AccountAddress, startSeq uint64, limit uint16, ledgerVersion model.Version) ([]*model.TransactionOnChainData, error) {
	txns, err := r.reader.AccountTransactions(address, startSeq, uint64(limit), true, ledgerVersion)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load transactions of %s starting at sequence number %d", address, startSeq)
	}

	records := make([]*model.TransactionOnChainData, 0, len(txns))
	for _, txn := range txns {
		record, err := r.materialize(txn, ledgerVersion)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// StateValue returns the raw value stored under key at version.
func (r *RequestHandler) StateValue(key model.StateKey, version model.Version) ([]byte, bool, error) {
	view, err := r.reader.StateViewAtVersion(version)
	if err != nil {
		return nil, false, joinCause(ErrStorageUnavailable, err, "failed to open state view at version %d", version)
	}

	value, exists, err := view.StateValue(key)
	if err != nil {
		return nil, false, joinCause(ErrStorageUnavailable, err, "failed to read %s at version %d", key, version)
	}

	return value, exists, nil
}

// AccountState returns all raw state values stored under address at version, ordered by key.
func (r *RequestHandler) AccountState(address model.AccountAddress, version model.Version) ([]*model.StateKeyValue, error) {
	values, err := r.reader.StateValuesByKeyPrefix(model.StateKeyPrefixFromAddress(address), version)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to read state of %s at version %d", address, version)
	}

	return values, nil
}

// AccountResources decodes every resource stored under address at version. Resources without a known
// layout are skipped.
func (r *RequestHandler) AccountResources(address model.AccountAddress, version model.Version) ([]*vm.Resource, error) {
	values, err := r.AccountState(address, version)
	if err != nil {
		return nil, err
	}

	resolver, err := r.ResolverAt(version)
	if err != nil {
		return nil, err
	}

	resources := make([]*vm.Resource, 0, len(values))
	for _, value := range values {
		tag, isResource := value.Key.ResourceTag()
		if !isResource {
			continue
		}

		resource, err := resolver.TryIntoResource(tag, value.Value)
		if err != nil {
			if ierrors.Is(err, vm.ErrUnknownLayout) {
				r.LogDebug("skipping resource without layout", "address", address, "tag", tag)

				continue
			}

			return nil, ierrors.Wrapf(err, "failed to decode %s of %s at version %d", tag, address, version)
		}

		resources = append(resources, resource)
	}

	return resources, nil
}

// AccountResource decodes the resource with the given tag stored under address at version.
func (r *RequestHandler) AccountResource(address model.AccountAddress, tag model.StructTag, version model.Version) (*vm.Resource, bool, error) {
	resolver, err := r.ResolverAt(version)
	if err != nil {
		return nil, false, err
	}

	resource, exists, err := resolver.Resource(address, tag)
	if err != nil {
		return nil, false, ierrors.Wrapf(err, "failed to resolve %s of %s", tag, address)
	}

	return resource, exists, nil
}
