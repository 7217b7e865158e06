package requesthandler

import (
	"context"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

// SubmitTransaction hands txn to the mempool and waits for its verdict. A rejected transaction is not an error,
// the rejection is part of the returned status.
func (r *RequestHandler) SubmitTransaction(ctx context.Context, txn *model.SignedTransaction) (*mempool.SubmissionStatus, error) {
	request, callback := mempool.NewSubmitTransactionRequest(txn)

	r.LogDebug("submitting transaction", "requestID", request.ID, "txHash", txn.Hash())
	if err := r.mempoolSender.Send(ctx, request); err != nil {
		r.optsServerMetrics.SubmissionChannelErrors.Inc()

		return nil, joinCause(ErrSubmissionChannel, err, "failed to send transaction %s to mempool", txn.Hash())
	}

	select {
	case result, ok := <-callback:
		if !ok {
			r.optsServerMetrics.SubmissionChannelErrors.Inc()

			return nil, ierrors.Wrapf(ErrSubmissionChannel, "mempool dropped submission of %s", txn.Hash())
		}
		if result.Err != nil {
			r.optsServerMetrics.SubmissionChannelErrors.Inc()

			return nil, joinCause(ErrSubmissionChannel, result.Err, "mempool failed to process transaction %s", txn.Hash())
		}

		if result.Status.IsAccepted() {
			r.optsServerMetrics.AcceptedSubmissions.Inc()
		} else {
			r.optsServerMetrics.RejectedSubmissions.Inc()
		}
		r.LogDebug("transaction submitted", "requestID", request.ID, "txHash", txn.Hash(), "status", result.Status)

		if r.optsSubmissionRetainer != nil {
			if err := r.optsSubmissionRetainer.RecordSubmission(txn, result.Status); err != nil {
				r.LogWarn("failed to retain submission outcome", "txHash", txn.Hash(), "err", err)
			}
		}

		return result.Status, nil

	case <-ctx.Done():
		return nil, ierrors.Wrapf(ctx.Err(), "gave up waiting for the mempool to process %s", txn.Hash())
	}
}

// PendingTransactionByHash asks the mempool for a transaction that was submitted but not yet committed.
// It returns nil if no such transaction is pending.
func (r *RequestHandler) PendingTransactionByHash(ctx context.Context, hash model.HashValue) (*model.SignedTransaction, error) {
	request, callback := mempool.NewGetTransactionByHashRequest(hash)

	r.LogDebug("looking up pending transaction", "requestID", request.ID, "txHash", hash)
	if err := r.mempoolSender.Send(ctx, request); err != nil {
		r.optsServerMetrics.SubmissionChannelErrors.Inc()

		return nil, joinCause(ErrSubmissionChannel, err, "failed to send lookup of %s to mempool", hash)
	}

	select {
	case txn, ok := <-callback:
		if !ok {
			r.optsServerMetrics.SubmissionChannelErrors.Inc()

			return nil, ierrors.Wrapf(ErrSubmissionChannel, "mempool dropped lookup of %s", hash)
		}

		return txn, nil

	case <-ctx.Done():
		return nil, ierrors.Wrapf(ctx.Err(), "gave up waiting for the mempool to look up %s", hash)
	}
}

// SubmissionOutcome returns the retained outcome of the latest submission of the transaction with the given hash.
func (r *RequestHandler) SubmissionOutcome(hash model.HashValue) (*txretainer.SubmissionMetadata, error) {
	if r.optsSubmissionRetainer == nil {
		return nil, ierrors.Wrap(ErrSubmissionRetainerDisabled, "submission outcomes are not retained by this node")
	}

	metadata, err := r.optsSubmissionRetainer.SubmissionByHash(hash)
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to read submission outcome of %s", hash)
	}
	if metadata == nil {
		return nil, ierrors.Wrapf(storage.ErrNotFound, "no submission outcome of %s retained", hash)
	}

	return metadata, nil
}

// AccountSubmissions returns up to limit retained submission outcomes of sender ordered by sequence number.
func (r *RequestHandler) AccountSubmissions(sender model.AccountAddress, limit uint16) ([]*txretainer.SubmissionMetadata, error) {
	if r.optsSubmissionRetainer == nil {
		return nil, ierrors.Wrap(ErrSubmissionRetainerDisabled, "submission outcomes are not retained by this node")
	}

	submissions, err := r.optsSubmissionRetainer.SubmissionsBySender(sender, int(limit))
	if err != nil {
		return nil, joinCause(ErrStorageUnavailable, err, "failed to read submission outcomes of %s", sender)
	}

	return submissions, nil
}
