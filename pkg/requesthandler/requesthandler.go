package requesthandler

import (
	"context"

	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/metrics"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

// MempoolSender delivers client requests to the mempool.
type MempoolSender interface {
	Send(ctx context.Context, request mempool.ClientRequest) error
}

// SubmissionRetainer keeps the outcomes of submissions.
type SubmissionRetainer interface {
	RecordSubmission(txn *model.SignedTransaction, status *mempool.SubmissionStatus) error
	SubmissionByHash(hash model.HashValue) (*txretainer.SubmissionMetadata, error)
	SubmissionsBySender(sender model.AccountAddress, limit int) ([]*txretainer.SubmissionMetadata, error)
}

// RequestHandler contains the logic to handle api requests. It reads from the ledger store, interprets state
// through the resolver and forwards submissions to the mempool. It holds no mutable state of its own and is
// safe for concurrent use.
type RequestHandler struct {
	reader        storage.Reader
	mempoolSender MempoolSender

	optsChainID            model.ChainID
	optsNodeRole           NodeRole
	optsContentLengthLimit uint64
	optsInterpreter        vm.Interpreter
	optsServerMetrics      *metrics.ServerMetrics
	optsSubmissionRetainer SubmissionRetainer

	log.Logger
}

func New(logger log.Logger, reader storage.Reader, mempoolSender MempoolSender, opts ...options.Option[RequestHandler]) *RequestHandler {
	return options.Apply(&RequestHandler{
		Logger:                 logger,
		reader:                 reader,
		mempoolSender:          mempoolSender,
		optsNodeRole:           NodeRoleFullNode,
		optsContentLengthLimit: 8 * 1024 * 1024,
	}, opts, func(r *RequestHandler) {
		if r.optsInterpreter == nil {
			r.optsInterpreter = vm.NewLayoutRegistry()
		}

		if r.optsServerMetrics == nil {
			r.optsServerMetrics = new(metrics.ServerMetrics)
		}
	})
}

func WithChainID(chainID model.ChainID) options.Option[RequestHandler] {
	return func(r *RequestHandler) {
		r.optsChainID = chainID
	}
}

func WithNodeRole(role NodeRole) options.Option[RequestHandler] {
	return func(r *RequestHandler) {
		r.optsNodeRole = role
	}
}

// WithContentLengthLimit sets the maximum size of a request body the api accepts.
func WithContentLengthLimit(limit uint64) options.Option[RequestHandler] {
	return func(r *RequestHandler) {
		r.optsContentLengthLimit = limit
	}
}

// WithInterpreter sets the interpreter used to decode on-chain resources.
func WithInterpreter(interpreter vm.Interpreter) options.Option[RequestHandler] {
	return func(r *RequestHandler) {
		r.optsInterpreter = interpreter
	}
}

func WithServerMetrics(serverMetrics *metrics.ServerMetrics) options.Option[RequestHandler] {
	return func(r *RequestHandler) {
		r.optsServerMetrics = serverMetrics
	}
}

// WithSubmissionRetainer makes the handler record the outcome of every answered submission.
func WithSubmissionRetainer(retainer SubmissionRetainer) options.Option[RequestHandler] {
	return func(r *RequestHandler) {
		r.optsSubmissionRetainer = retainer
	}
}
