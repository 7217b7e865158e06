package restapi

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

const (
	// ParameterVersion is used to identify a ledger version.
	ParameterVersion = "version"

	// ParameterTransactionHash is used to identify a transaction by its hash.
	ParameterTransactionHash = "txn_hash"

	// ParameterAddress is used to identify an account.
	ParameterAddress = "address"

	// ParameterResourceType is used to identify a resource by its struct tag.
	ParameterResourceType = "resource_type"

	// ParameterCreationNumber is used to identify an event stream of an account.
	ParameterCreationNumber = "creation_number"
)

const (
	// QueryParameterLedgerVersion pins a read to a ledger version instead of the latest one.
	QueryParameterLedgerVersion = "ledger_version"

	// QueryParameterStart is the first version or sequence number of a paginated result.
	QueryParameterStart = "start"

	// QueryParameterLimit is the maximum number of entries of a paginated result.
	QueryParameterLimit = "limit"

	// QueryParameterDurationSecs is the maximum age of the latest ledger info for the node to be healthy.
	QueryParameterDurationSecs = "duration_secs"
)

func ParseUint64Param(c echo.Context, paramName string) (uint64, error) {
	value, err := strconv.ParseUint(c.Param(paramName), 10, 64)
	if err != nil {
		return 0, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid %s: %s", paramName, c.Param(paramName))
	}

	return value, nil
}

// ParseUint64QueryParam returns defaultValue if the query parameter is not set.
func ParseUint64QueryParam(c echo.Context, paramName string, defaultValue uint64) (uint64, error) {
	query := c.QueryParam(paramName)
	if query == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseUint(query, 10, 64)
	if err != nil {
		return 0, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid %s: %s", paramName, query)
	}

	return value, nil
}

// ParseLimitQueryParam parses the page size and clamps it to maxLimit.
func ParseLimitQueryParam(c echo.Context, defaultLimit uint16, maxLimit uint16) (uint16, error) {
	limit, err := ParseUint64QueryParam(c, QueryParameterLimit, uint64(defaultLimit))
	if err != nil {
		return 0, err
	}

	if limit == 0 {
		return 0, ierrors.Wrapf(httpserver.ErrInvalidParameter, "%s must be positive", QueryParameterLimit)
	}

	return uint16(min(limit, uint64(maxLimit))), nil
}

func ParseHashParam(c echo.Context, paramName string) (model.HashValue, error) {
	hash, err := model.HashValueFromHex(c.Param(paramName))
	if err != nil {
		return model.ZeroHash, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid %s: %s", paramName, err)
	}

	return hash, nil
}

func ParseAddressParam(c echo.Context, paramName string) (model.AccountAddress, error) {
	address, err := model.AccountAddressFromHex(c.Param(paramName))
	if err != nil {
		return model.AccountAddress{}, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid %s: %s", paramName, err)
	}

	return address, nil
}

func ParseStructTagParam(c echo.Context, paramName string) (model.StructTag, error) {
	unescaped, err := url.PathUnescape(c.Param(paramName))
	if err != nil {
		return model.StructTag{}, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid %s: %s", paramName, err)
	}

	tag, err := model.ParseStructTag(unescaped)
	if err != nil {
		return model.StructTag{}, ierrors.Wrapf(httpserver.ErrInvalidParameter, "invalid %s: %s", paramName, err)
	}

	return tag, nil
}
