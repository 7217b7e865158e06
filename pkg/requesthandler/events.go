package requesthandler

import (
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

// Events returns up to limit events of the stream key starting at sequence number start.
// Events emitted after ledgerVersion are dropped.
func (r *RequestHandler) Events(key model.EventKey, start uint64, limit uint16, ledgerVersion model.Version) ([]*model.EventWithVersion, error) {
	events, err := r.reader.Events(key, start, storage.Ascending, uint64(limit))
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to load events of %s starting at %d", key, start)
	}

	visible := make([]*model.EventWithVersion, 0, len(events))
	for _, event := range events {
		if event.TransactionVersion <= ledgerVersion {
			visible = append(visible, event)
		}
	}

	return visible, nil
}
