package vm

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

// Resolver interprets the state of a single snapshot. It is owned by the call that created it.
type Resolver struct {
	view        storage.StateView
	interpreter Interpreter
}

func NewResolver(view storage.StateView, interpreter Interpreter) *Resolver {
	return &Resolver{
		view:        view,
		interpreter: interpreter,
	}
}

// Version returns the version of the snapshot the resolver reads from.
func (r *Resolver) Version() model.Version {
	return r.view.Version()
}

// Resource reads and decodes the resource stored under address. It returns false if the account does not hold one.
func (r *Resolver) Resource(address model.AccountAddress, tag model.StructTag) (*Resource, bool, error) {
	key := model.ResourceStateKey(address, tag)

	value, exists, err := r.view.StateValue(key)
	if err != nil {
		return nil, false, ierrors.Wrapf(err, "failed to read %s at version %d", key, r.Version())
	}
	if !exists {
		return nil, false, nil
	}

	resource, err := r.interpreter.Decode(tag, value)
	if err != nil {
		return nil, false, err
	}

	return resource, true, nil
}

// TryIntoResource decodes a raw value, e.g. the new value of a write set entry.
func (r *Resolver) TryIntoResource(tag model.StructTag, bytes []byte) (*Resource, error) {
	return r.interpreter.Decode(tag, bytes)
}

func (r *Resolver) StateValue(key model.StateKey) ([]byte, bool, error) {
	return r.view.StateValue(key)
}
