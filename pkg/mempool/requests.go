package mempool

import (
	"github.com/google/uuid"

	"github.com/iotaledger/ledgerapi/pkg/model"
)

// ClientRequest is a request sent to the mempool. Every request is answered exactly once on its callback,
// or its callback is closed if the mempool shuts down before answering.
type ClientRequest interface {
	RequestID() uuid.UUID
}

// SubmitTransactionResult carries the submission status, or the error that kept the mempool from deciding.
type SubmitTransactionResult struct {
	Status *SubmissionStatus
	Err    error
}

type SubmitTransactionRequest struct {
	ID          uuid.UUID
	Transaction *model.SignedTransaction
	Callback    chan<- *SubmitTransactionResult
}

// NewSubmitTransactionRequest creates a request and the buffered channel its result is delivered on.
func NewSubmitTransactionRequest(txn *model.SignedTransaction) (*SubmitTransactionRequest, <-chan *SubmitTransactionResult) {
	callback := make(chan *SubmitTransactionResult, 1)

	return &SubmitTransactionRequest{
		ID:          uuid.New(),
		Transaction: txn,
		Callback:    callback,
	}, callback
}

func (r *SubmitTransactionRequest) RequestID() uuid.UUID {
	return r.ID
}

// GetTransactionByHashRequest asks for a pending transaction. A nil response means it is not pending.
type GetTransactionByHashRequest struct {
	ID       uuid.UUID
	Hash     model.HashValue
	Callback chan<- *model.SignedTransaction
}

func NewGetTransactionByHashRequest(hash model.HashValue) (*GetTransactionByHashRequest, <-chan *model.SignedTransaction) {
	callback := make(chan *model.SignedTransaction, 1)

	return &GetTransactionByHashRequest{
		ID:       uuid.New(),
		Hash:     hash,
		Callback: callback,
	}, callback
}

func (r *GetTransactionByHashRequest) RequestID() uuid.UUID {
	return r.ID
}
