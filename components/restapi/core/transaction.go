package core

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/components/restapi"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
	restapipkg "github.com/iotaledger/ledgerapi/pkg/restapi"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

func transactions(c echo.Context) ([]*TransactionResponse, error) {
	snapshot, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	// without a start the latest page is returned
	limit, err := restapipkg.ParseLimitQueryParam(c, restapi.ParamsRestAPI.Limits.DefaultPageSize, restapi.ParamsRestAPI.Limits.MaxPageSize)
	if err != nil {
		return nil, err
	}

	defaultStart := snapshot.OldestLedgerVersion.Uint64()
	if ledgerVersion+1 > uint64(limit) {
		defaultStart = max(defaultStart, ledgerVersion+1-uint64(limit))
	}

	start, err := restapipkg.ParseUint64QueryParam(c, restapipkg.QueryParameterStart, defaultStart)
	if err != nil {
		return nil, err
	}
	if start < snapshot.OldestLedgerVersion.Uint64() {
		return nil, ierrors.Wrapf(storage.ErrPruned, "start version %d is older than the oldest ledger version %d", start, snapshot.OldestLedgerVersion.Uint64())
	}

	txns, err := deps.RequestHandler.Transactions(start, limit, ledgerVersion)
	if err != nil {
		return nil, err
	}

	return newTransactionResponses(txns), nil
}

func transactionByVersion(c echo.Context) (*TransactionResponse, error) {
	_, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	version, err := restapipkg.ParseUint64Param(c, restapipkg.ParameterVersion)
	if err != nil {
		return nil, err
	}

	txn, err := deps.RequestHandler.TransactionByVersion(version, ledgerVersion)
	if err != nil {
		return nil, err
	}

	return newTransactionResponse(txn), nil
}

// transactionByHash returns either a *TransactionResponse or a *PendingTransactionResponse.
func transactionByHash(c echo.Context) (any, error) {
	snapshot, err := latestLedgerInfo(c)
	if err != nil {
		return nil, err
	}

	hash, err := restapipkg.ParseHashParam(c, restapipkg.ParameterTransactionHash)
	if err != nil {
		return nil, err
	}

	txn, err := deps.RequestHandler.TransactionByHash(hash, snapshot.Version())
	if err != nil {
		return nil, err
	}
	if txn != nil {
		return newTransactionResponse(txn), nil
	}

	pending, err := deps.RequestHandler.PendingTransactionByHash(c.Request().Context(), hash)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ierrors.Wrapf(echo.ErrNotFound, "transaction %s not found", hash)
	}

	return newPendingTransactionResponse(pending), nil
}

func transactionSubmission(c echo.Context) (*SubmissionOutcomeResponse, error) {
	hash, err := restapipkg.ParseHashParam(c, restapipkg.ParameterTransactionHash)
	if err != nil {
		return nil, err
	}

	metadata, err := deps.RequestHandler.SubmissionOutcome(hash)
	if err != nil {
		return nil, err
	}

	return newSubmissionOutcomeResponse(hash, metadata), nil
}

func parseSignedTransaction(c echo.Context) (*model.SignedTransaction, error) {
	if c.Request().Body == nil {
		return nil, ierrors.Wrap(httpserver.ErrInvalidParameter, "invalid transaction, error: request body missing")
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(contentType, MIMESignedTransactionBytes):
		bytes, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid transaction, error: %s", err)
		}

		txn, consumed, err := model.SignedTransactionFromBytes(bytes)
		if err != nil {
			return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid transaction, error: %s", err)
		}
		if consumed != len(bytes) {
			return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid transaction, error: %d trailing bytes", len(bytes)-consumed)
		}

		return txn, nil

	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		txn := new(model.SignedTransaction)
		if err := c.Bind(txn); err != nil {
			return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid transaction, error: %s", err)
		}

		return txn, nil

	default:
		return nil, echo.ErrUnsupportedMediaType
	}
}

// submitTransaction returns 202 if the mempool accepted the transaction. A rejection is a regular response.
func submitTransaction(c echo.Context) (int, *SubmissionResponse, error) {
	txn, err := parseSignedTransaction(c)
	if err != nil {
		return 0, nil, err
	}

	status, err := deps.RequestHandler.SubmitTransaction(c.Request().Context(), txn)
	if err != nil {
		return 0, nil, err
	}

	resp := newSubmissionResponse(txn.Hash(), status)
	switch status.Code {
	case mempool.Accepted:
		return http.StatusAccepted, resp, nil
	case mempool.MempoolIsFull:
		return http.StatusInsufficientStorage, resp, nil
	default:
		return http.StatusBadRequest, resp, nil
	}
}
