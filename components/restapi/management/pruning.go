package management

import (
	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

// PruneDatabaseRequest selects the versions to prune. Exactly one of the fields has to be set.
type PruneDatabaseRequest struct {
	// TargetVersion becomes the oldest retained version.
	TargetVersion model.U64 `json:"targetVersion"`
	// Depth is the number of versions to retain below the latest one.
	Depth model.U64 `json:"depth"`
}

type PruneDatabaseResponse struct {
	OldestLedgerVersion model.U64 `json:"oldestLedgerVersion"`
}

func pruneDatabase(c echo.Context) (*PruneDatabaseResponse, error) {
	request := &PruneDatabaseRequest{}
	if err := c.Bind(request); err != nil {
		return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid request, error: %s", err)
	}

	// only allow one type of pruning at a time
	if (request.TargetVersion == 0) == (request.Depth == 0) {
		return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "either targetVersion or depth has to be specified")
	}

	targetVersion := request.TargetVersion.Uint64()
	if request.Depth != 0 {
		ledgerInfo, err := deps.Store.LatestLedgerInfo()
		if err != nil {
			return nil, ierrors.Wrapf(echo.ErrServiceUnavailable, "failed to read latest ledger info: %s", err)
		}

		latestVersion := ledgerInfo.LedgerInfo.Version
		if request.Depth.Uint64() > latestVersion {
			return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "depth %d exceeds the latest version %d", request.Depth.Uint64(), latestVersion)
		}
		targetVersion = latestVersion - request.Depth.Uint64()
	}

	oldestVersion, _, err := deps.Store.FirstTransactionVersion()
	if err != nil {
		return nil, ierrors.Wrapf(echo.ErrServiceUnavailable, "failed to read oldest version: %s", err)
	}
	if targetVersion <= oldestVersion {
		return &PruneDatabaseResponse{OldestLedgerVersion: model.U64(oldestVersion)}, nil
	}

	if err := deps.Store.Prune(targetVersion); err != nil {
		return nil, ierrors.Wrapf(httpserver.ErrInvalidParameter, "pruning database failed: %s", err)
	}

	return &PruneDatabaseResponse{OldestLedgerVersion: model.U64(targetVersion)}, nil
}
