package core

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

// httpError translates an error of the request handler into the HTTP error returned to the client.
func httpError(err error) error {
	return echo.NewHTTPError(httpStatusCode(err), err.Error()).SetInternal(err)
}

func httpStatusCode(err error) int {
	var httpErr *echo.HTTPError

	switch {
	case ierrors.As(err, &httpErr):
		return httpErr.Code
	case ierrors.Is(err, storage.ErrPruned):
		return http.StatusGone
	case ierrors.Is(err, storage.ErrNotFound),
		ierrors.Is(err, storage.ErrVersionAhead),
		ierrors.Is(err, requesthandler.ErrBlockNotFound):
		return http.StatusNotFound
	case ierrors.Is(err, requesthandler.ErrSubmissionRetainerDisabled):
		return http.StatusNotImplemented
	case ierrors.Is(err, requesthandler.ErrStorageUnavailable),
		ierrors.Is(err, requesthandler.ErrInconsistentLedger),
		ierrors.Is(err, requesthandler.ErrSubmissionChannel),
		ierrors.Is(err, requesthandler.ErrLedgerBehind),
		ierrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
