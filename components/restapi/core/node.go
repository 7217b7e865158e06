package core

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/restapi"
	"github.com/iotaledger/ledgerapi/pkg/storage"
)

const (
	HeaderChainID             = "X-Ledger-Chain-Id"
	HeaderLedgerVersion       = "X-Ledger-Ledger-Version"
	HeaderOldestLedgerVersion = "X-Ledger-Ledger-Oldest-Version"
	HeaderLedgerTimestamp     = "X-Ledger-Ledger-TimestampUsec"
	HeaderEpoch               = "X-Ledger-Epoch"
)

// latestLedgerInfo reads the ledger snapshot a request is answered against and exposes it in the response headers.
func latestLedgerInfo(c echo.Context) (*model.LedgerSnapshot, error) {
	snapshot, err := deps.RequestHandler.LatestLedgerInfo()
	if err != nil {
		return nil, err
	}

	header := c.Response().Header()
	header.Set(HeaderChainID, snapshot.ChainID.String())
	header.Set(HeaderLedgerVersion, snapshot.LedgerVersion.String())
	header.Set(HeaderOldestLedgerVersion, snapshot.OldestLedgerVersion.String())
	header.Set(HeaderLedgerTimestamp, snapshot.LedgerTimestamp.String())
	header.Set(HeaderEpoch, snapshot.Epoch.String())

	return snapshot, nil
}

// requestedLedgerVersion returns the ledger version given in the query, or the latest one if none was given.
func requestedLedgerVersion(c echo.Context) (*model.LedgerSnapshot, model.Version, error) {
	snapshot, err := latestLedgerInfo(c)
	if err != nil {
		return nil, 0, err
	}

	ledgerVersion, err := restapi.ParseUint64QueryParam(c, restapi.QueryParameterLedgerVersion, snapshot.Version())
	if err != nil {
		return nil, 0, err
	}

	if ledgerVersion > snapshot.Version() {
		return nil, 0, ierrors.Wrapf(storage.ErrVersionAhead, "ledger version %d is newer than the latest ledger version %d", ledgerVersion, snapshot.Version())
	}
	if ledgerVersion < snapshot.OldestLedgerVersion.Uint64() {
		return nil, 0, ierrors.Wrapf(storage.ErrPruned, "ledger version %d is older than the oldest ledger version %d", ledgerVersion, snapshot.OldestLedgerVersion.Uint64())
	}

	return snapshot, ledgerVersion, nil
}

func index(c echo.Context) (*IndexResponse, error) {
	snapshot, err := latestLedgerInfo(c)
	if err != nil {
		return nil, err
	}

	latestBlock, err := deps.RequestHandler.BlockInfo(snapshot.Version(), snapshot.Version())
	if err != nil {
		return nil, err
	}

	oldestBlock, err := deps.RequestHandler.BlockInfo(snapshot.OldestLedgerVersion.Uint64(), snapshot.Version())
	if err != nil {
		return nil, err
	}

	return &IndexResponse{
		LedgerSnapshot:    snapshot,
		BlockHeight:       latestBlock.BlockHeight,
		OldestBlockHeight: oldestBlock.BlockHeight,
		NodeRole:          deps.RequestHandler.NodeRole().String(),
	}, nil
}

func healthy(c echo.Context) (*HealthyResponse, error) {
	if c.QueryParam(restapi.QueryParameterDurationSecs) == "" {
		if _, err := latestLedgerInfo(c); err != nil {
			return nil, err
		}

		return &HealthyResponse{Message: "ledger is readable"}, nil
	}

	durationSecs, err := restapi.ParseUint64QueryParam(c, restapi.QueryParameterDurationSecs, 0)
	if err != nil {
		return nil, err
	}

	maxAge := time.Duration(durationSecs) * time.Second
	if err := deps.RequestHandler.CheckHealth(maxAge, time.Now()); err != nil {
		return nil, err
	}

	return &HealthyResponse{Message: "ledger is younger than " + strconv.FormatUint(durationSecs, 10) + "s"}, nil
}
