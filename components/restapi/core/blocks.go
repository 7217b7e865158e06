package core

import (
	"github.com/labstack/echo/v4"

	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/restapi"
)

func blockByVersion(c echo.Context) (*model.BlockInfo, error) {
	_, ledgerVersion, err := requestedLedgerVersion(c)
	if err != nil {
		return nil, err
	}

	version, err := restapi.ParseUint64Param(c, restapi.ParameterVersion)
	if err != nil {
		return nil, err
	}

	return deps.RequestHandler.BlockInfo(version, ledgerVersion)
}
