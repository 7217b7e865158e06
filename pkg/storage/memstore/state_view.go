package memstore

import (
	"github.com/iotaledger/ledgerapi/pkg/model"
)

type stateView struct {
	store   *Store
	version model.Version
}

func (v *stateView) Version() model.Version {
	return v.version
}

func (v *stateView) StateValue(key model.StateKey) ([]byte, bool, error) {
	return v.store.stateValue(key, v.version)
}
