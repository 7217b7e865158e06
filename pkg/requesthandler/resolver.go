package requesthandler

import (
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

// ResolverAt returns a resolver over the state snapshot at version. The resolver is owned by the caller.
func (r *RequestHandler) ResolverAt(version model.Version) (*vm.Resolver, error) {
	view, err := r.reader.StateViewAtVersion(version)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to open state view at version %d", version)
	}

	return vm.NewResolver(view, r.optsInterpreter), nil
}

func (r *RequestHandler) ResolverAtLatest() (*vm.Resolver, error) {
	view, err := r.reader.LatestStateView()
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to open latest state view")
	}

	return vm.NewResolver(view, r.optsInterpreter), nil
}
