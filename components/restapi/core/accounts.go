package core

import (
	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/components/restapi"
	"github.com/iotaledger/ledgerapi/pkg/model"
	restapipkg "github.com/iotaledger/ledgerapi/pkg/restapi"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

func accountTransactions(c echo.Context) ([]*TransactionResponse, error) {
	_, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	address, err := restapipkg.ParseAddressParam(c, restapipkg.ParameterAddress)
	if err != nil {
		return nil, err
	}

	start, err := restapipkg.ParseUint64QueryParam(c, restapipkg.QueryParameterStart, 0)
	if err != nil {
		return nil, err
	}

	limit, err := restapipkg.ParseLimitQueryParam(c, restapi.ParamsRestAPI.Limits.DefaultPageSize, restapi.ParamsRestAPI.Limits.MaxPageSize)
	if err != nil {
		return nil, err
	}

	txns, err := deps.RequestHandler.AccountTransactions(address, start, limit, ledgerVersion)
	if err != nil {
		return nil, err
	}

	return newTransactionResponses(txns), nil
}

func accountSubmissions(c echo.Context) ([]*SubmissionOutcomeResponse, error) {
	address, err := restapipkg.ParseAddressParam(c, restapipkg.ParameterAddress)
	if err != nil {
		return nil, err
	}

	limit, err := restapipkg.ParseLimitQueryParam(c, restapi.ParamsRestAPI.Limits.DefaultPageSize, restapi.ParamsRestAPI.Limits.MaxPageSize)
	if err != nil {
		return nil, err
	}

	submissions, err := deps.RequestHandler.AccountSubmissions(address, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]*SubmissionOutcomeResponse, len(submissions))
	for i, submission := range submissions {
		resp[i] = newSubmissionOutcomeResponse(submission.Hash(), submission)
	}

	return resp, nil
}

func accountResources(c echo.Context) ([]*vm.Resource, error) {
	_, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	address, err := restapipkg.ParseAddressParam(c, restapipkg.ParameterAddress)
	if err != nil {
		return nil, err
	}

	return deps.RequestHandler.AccountResources(address, ledgerVersion)
}

func accountResource(c echo.Context) (*vm.Resource, error) {
	_, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	address, err := restapipkg.ParseAddressParam(c, restapipkg.ParameterAddress)
	if err != nil {
		return nil, err
	}

	tag, err := restapipkg.ParseStructTagParam(c, restapipkg.ParameterResourceType)
	if err != nil {
		return nil, err
	}

	resource, exists, err := deps.RequestHandler.AccountResource(address, tag, ledgerVersion)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ierrors.Wrapf(echo.ErrNotFound, "resource %s not found for account %s at version %d", tag, address, ledgerVersion)
	}

	return resource, nil
}

func accountEvents(c echo.Context) ([]*EventResponse, error) {
	_, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	address, err := restapipkg.ParseAddressParam(c, restapipkg.ParameterAddress)
	if err != nil {
		return nil, err
	}

	creationNumber, err := restapipkg.ParseUint64Param(c, restapipkg.ParameterCreationNumber)
	if err != nil {
		return nil, err
	}

	start, err := restapipkg.ParseUint64QueryParam(c, restapipkg.QueryParameterStart, 0)
	if err != nil {
		return nil, err
	}

	limit, err := restapipkg.ParseLimitQueryParam(c, restapi.ParamsRestAPI.Limits.DefaultPageSize, restapi.ParamsRestAPI.Limits.MaxPageSize)
	if err != nil {
		return nil, err
	}

	events, err := deps.RequestHandler.Events(model.NewEventKey(creationNumber, address), start, limit, ledgerVersion)
	if err != nil {
		return nil, err
	}

	return newEventResponses(events), nil
}
