package model

import (
	"fmt"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"
)

// EventKey identifies an event stream: the creation number of its handle and the owning account.
type EventKey struct {
	CreationNumber uint64         `json:"creation_number"`
	Address        AccountAddress `json:"account_address"`
}

func NewEventKey(creationNumber uint64, address AccountAddress) EventKey {
	return EventKey{CreationNumber: creationNumber, Address: address}
}

func (k EventKey) Bytes() []byte {
	m := marshalutil.New()
	m.WriteUint64(k.CreationNumber)
	writeAddress(m, k.Address)

	return m.Bytes()
}

func (k EventKey) String() string {
	return fmt.Sprintf("%d-%s", k.CreationNumber, k.Address.ShortString())
}

type ContractEvent struct {
	Key            EventKey `json:"key"`
	SequenceNumber uint64   `json:"sequence_number"`
	TypeTag        string   `json:"type"`
	Data           []byte   `json:"data"`
}

func (e *ContractEvent) writeTo(m *marshalutil.MarshalUtil) {
	m.WriteUint64(e.Key.CreationNumber)
	writeAddress(m, e.Key.Address)
	m.WriteUint64(e.SequenceNumber)
	writeString(m, e.TypeTag)
	writeBytes(m, e.Data)
}

func readContractEvent(m *marshalutil.MarshalUtil) (*ContractEvent, error) {
	var err error
	event := new(ContractEvent)

	if event.Key.CreationNumber, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse event creation number")
	}
	if event.Key.Address, err = readAddress(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse event address")
	}
	if event.SequenceNumber, err = m.ReadUint64(); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse event sequence number")
	}
	if event.TypeTag, err = readString(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse event type")
	}
	if event.Data, err = readBytes(m); err != nil {
		return nil, ierrors.Wrap(err, "failed to parse event data")
	}

	return event, nil
}

func writeEvents(m *marshalutil.MarshalUtil, events []*ContractEvent) {
	m.WriteUint32(uint32(len(events)))
	for _, event := range events {
		event.writeTo(m)
	}
}

func readEvents(m *marshalutil.MarshalUtil) ([]*ContractEvent, error) {
	count, err := m.ReadUint32()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read event count")
	}

	events := make([]*ContractEvent, 0, count)
	for i := uint32(0); i < count; i++ {
		event, err := readContractEvent(m)
		if err != nil {
			return nil, ierrors.Wrapf(err, "failed to read event %d", i)
		}
		events = append(events, event)
	}

	return events, nil
}

// EventWithVersion is an event together with the version of the transaction that emitted it.
type EventWithVersion struct {
	TransactionVersion Version
	Event              *ContractEvent
}

func (e *EventWithVersion) Bytes() ([]byte, error) {
	m := marshalutil.New()
	m.WriteUint64(e.TransactionVersion)
	e.Event.writeTo(m)

	return m.Bytes(), nil
}

func EventWithVersionFromBytes(bytes []byte) (*EventWithVersion, int, error) {
	m := marshalutil.New(bytes)

	version, err := m.ReadUint64()
	if err != nil {
		return nil, m.ReadOffset(), ierrors.Wrap(err, "failed to parse transaction version")
	}

	event, err := readContractEvent(m)
	if err != nil {
		return nil, m.ReadOffset(), err
	}

	return &EventWithVersion{TransactionVersion: version, Event: event}, m.ReadOffset(), nil
}
