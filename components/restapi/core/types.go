package core

import (
	"encoding/hex"

	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
)

type (
	// IndexResponse defines the response of a GET index REST API call.
	IndexResponse struct {
		*model.LedgerSnapshot

		// The height of the block the latest ledger version belongs to.
		BlockHeight model.U64 `json:"block_height"`
		// The height of the oldest block still retained by the node.
		OldestBlockHeight model.U64 `json:"oldest_block_height"`
		// The role the node plays in the network.
		NodeRole string `json:"node_role"`
	}

	// HealthyResponse defines the response of a GET healthy REST API call.
	HealthyResponse struct {
		Message string `json:"message"`
	}

	// TransactionResponse defines a committed transaction.
	TransactionResponse struct {
		Type                string            `json:"type"`
		Version             model.U64         `json:"version"`
		Hash                model.HashValue   `json:"hash"`
		StateChangeHash     model.HashValue   `json:"state_change_hash"`
		EventRootHash       model.HashValue   `json:"event_root_hash"`
		StateCheckpointHash *model.HashValue  `json:"state_checkpoint_hash,omitempty"`
		AccumulatorRootHash model.HashValue   `json:"accumulator_root_hash"`
		GasUsed             model.U64         `json:"gas_used"`
		Success             bool              `json:"success"`
		VMStatus            string            `json:"vm_status"`
		Changes             []*WriteSetChange `json:"changes"`
		Events              []*EventResponse  `json:"events"`

		*UserTransactionFields
		*BlockMetadataFields
		*StateCheckpointFields
	}

	// PendingTransactionResponse defines a transaction that waits in the mempool.
	PendingTransactionResponse struct {
		Type string          `json:"type"`
		Hash model.HashValue `json:"hash"`

		*UserTransactionFields
	}

	// UserTransactionFields are the fields a transaction submitted by a user adds to its rendering.
	UserTransactionFields struct {
		Sender                  model.AccountAddress `json:"sender"`
		SequenceNumber          model.U64            `json:"sequence_number"`
		MaxGasAmount            model.U64            `json:"max_gas_amount"`
		GasUnitPrice            model.U64            `json:"gas_unit_price"`
		ExpirationTimestampSecs model.U64            `json:"expiration_timestamp_secs"`
		Payload                 string               `json:"payload"`
		Signature               *SignatureResponse   `json:"signature"`
	}

	SignatureResponse struct {
		PublicKey string `json:"public_key"`
		Signature string `json:"signature"`
	}

	// BlockMetadataFields are the fields a block metadata transaction adds to its rendering.
	BlockMetadataFields struct {
		ID                    model.HashValue      `json:"id"`
		Epoch                 model.U64            `json:"epoch"`
		Round                 model.U64            `json:"round"`
		Proposer              model.AccountAddress `json:"proposer"`
		FailedProposerIndices []uint32             `json:"failed_proposer_indices"`
		Timestamp             model.U64            `json:"timestamp"`
	}

	StateCheckpointFields struct {
		BlockID model.HashValue `json:"block_id"`
	}

	// WriteSetChange defines a single state mutation of a transaction.
	WriteSetChange struct {
		Type     string               `json:"type"`
		Address  model.AccountAddress `json:"address"`
		StateKey string               `json:"state_key"`
		Data     string               `json:"data,omitempty"`
	}

	// EventResponse defines an event emitted by a transaction.
	EventResponse struct {
		Version        *model.U64     `json:"version,omitempty"`
		GUID           model.EventKey `json:"guid"`
		SequenceNumber model.U64      `json:"sequence_number"`
		Type           string         `json:"type"`
		Data           string         `json:"data"`
	}

	// SubmissionResponse defines the outcome of a POST transaction REST API call.
	SubmissionResponse struct {
		Hash              model.HashValue `json:"hash"`
		Status            string          `json:"status"`
		Message           string          `json:"message,omitempty"`
		DiscardedVMStatus string          `json:"vm_status,omitempty"`
	}

	// SubmissionOutcomeResponse defines the retained outcome of the latest submission of a transaction.
	SubmissionOutcomeResponse struct {
		*SubmissionResponse
		Sender           string    `json:"sender"`
		SequenceNumber   model.U64 `json:"sequence_number"`
		SubmittedAtUsecs model.U64 `json:"submitted_at_usecs"`
	}
)

func hexEncode(bytes []byte) string {
	return "0x" + hex.EncodeToString(bytes)
}

func newTransactionResponse(txn *model.TransactionOnChainData) *TransactionResponse {
	resp := &TransactionResponse{
		Type:                txn.Transaction.Type().String(),
		Version:             model.U64(txn.Version),
		Hash:                txn.Info.TransactionHash,
		StateChangeHash:     txn.Info.StateChangeHash,
		EventRootHash:       txn.Info.EventRootHash,
		StateCheckpointHash: txn.Info.StateCheckpointHash,
		AccumulatorRootHash: txn.AccumulatorRootHash,
		GasUsed:             model.U64(txn.Info.GasUsed),
		Success:             txn.Info.Status.Success,
		VMStatus:            txn.Info.Status.VMStatus,
		Changes:             make([]*WriteSetChange, 0, len(txn.Changes)),
		Events:              make([]*EventResponse, 0, len(txn.Events)),
	}

	for _, change := range txn.Changes {
		resp.Changes = append(resp.Changes, newWriteSetChange(change))
	}

	for _, event := range txn.Events {
		resp.Events = append(resp.Events, newEventResponse(event, nil))
	}

	switch typedTxn := txn.Transaction.(type) {
	case *model.UserTransaction:
		resp.UserTransactionFields = newUserTransactionFields(typedTxn.SignedTransaction)
	case *model.BlockMetadataTransaction:
		resp.BlockMetadataFields = &BlockMetadataFields{
			ID:                    typedTxn.ID,
			Epoch:                 model.U64(typedTxn.Epoch),
			Round:                 model.U64(typedTxn.Round),
			Proposer:              typedTxn.Proposer,
			FailedProposerIndices: typedTxn.FailedProposerIndices,
			Timestamp:             model.U64(typedTxn.TimestampUsecs),
		}
	case *model.StateCheckpointTransaction:
		resp.StateCheckpointFields = &StateCheckpointFields{BlockID: typedTxn.BlockID}
	}

	return resp
}

func newTransactionResponses(txns []*model.TransactionOnChainData) []*TransactionResponse {
	resp := make([]*TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		resp = append(resp, newTransactionResponse(txn))
	}

	return resp
}

func newPendingTransactionResponse(txn *model.SignedTransaction) *PendingTransactionResponse {
	return &PendingTransactionResponse{
		Type:                  "pending_transaction",
		Hash:                  txn.Hash(),
		UserTransactionFields: newUserTransactionFields(txn),
	}
}

func newUserTransactionFields(txn *model.SignedTransaction) *UserTransactionFields {
	return &UserTransactionFields{
		Sender:                  txn.Sender,
		SequenceNumber:          model.U64(txn.SequenceNumber),
		MaxGasAmount:            model.U64(txn.MaxGasAmount),
		GasUnitPrice:            model.U64(txn.GasUnitPrice),
		ExpirationTimestampSecs: model.U64(txn.ExpirationTimestampSecs),
		Payload:                 hexEncode(txn.Payload),
		Signature: &SignatureResponse{
			PublicKey: hexEncode(txn.PublicKey),
			Signature: hexEncode(txn.Signature),
		},
	}
}

func newWriteSetChange(entry *model.WriteSetEntry) *WriteSetChange {
	kind := "resource"
	if entry.Key.Path == model.PathTypeCode {
		kind = "module"
	}

	change := &WriteSetChange{
		Type:     "write_" + kind,
		Address:  entry.Key.Address,
		StateKey: entry.Key.String(),
	}
	if entry.Op.IsDeletion() {
		change.Type = "delete_" + kind
	} else {
		change.Data = hexEncode(entry.Op.Value)
	}

	return change
}

func newEventResponse(event *model.ContractEvent, version *model.U64) *EventResponse {
	return &EventResponse{
		Version:        version,
		GUID:           event.Key,
		SequenceNumber: model.U64(event.SequenceNumber),
		Type:           event.TypeTag,
		Data:           hexEncode(event.Data),
	}
}

func newEventResponses(events []*model.EventWithVersion) []*EventResponse {
	resp := make([]*EventResponse, 0, len(events))
	for _, event := range events {
		version := model.U64(event.TransactionVersion)
		resp = append(resp, newEventResponse(event.Event, &version))
	}

	return resp
}

func newSubmissionResponse(hash model.HashValue, status *mempool.SubmissionStatus) *SubmissionResponse {
	resp := &SubmissionResponse{
		Hash:    hash,
		Status:  status.Code.String(),
		Message: status.Message,
	}
	if status.DiscardedVMStatus != nil {
		resp.DiscardedVMStatus = string(*status.DiscardedVMStatus)
	}

	return resp
}

func newSubmissionOutcomeResponse(hash model.HashValue, metadata *txretainer.SubmissionMetadata) *SubmissionOutcomeResponse {
	return &SubmissionOutcomeResponse{
		SubmissionResponse: newSubmissionResponse(hash, metadata.Status()),
		Sender:             hexEncode(metadata.Sender),
		SequenceNumber:     model.U64(metadata.SequenceNumber),
		SubmittedAtUsecs:   model.U64(metadata.SubmittedAt),
	}
}
