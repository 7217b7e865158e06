package core

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/components/restapi"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	restapipkg "github.com/iotaledger/ledgerapi/pkg/restapi"
)

const (
	// RouteIndex is the route for getting the latest ledger info.
	// GET returns the ledger info together with the node role and the latest block height.
	RouteIndex = ""

	// RouteHealthy is the route for checking whether the ledger of the node is up to date.
	// GET returns 200 if the latest ledger timestamp is younger than the given duration_secs.
	RouteHealthy = "/-/healthy"

	// RouteBlockByVersion is the route for getting the block that contains a version.
	// GET returns the block info.
	RouteBlockByVersion = "/blocks/by_version/:" + restapipkg.ParameterVersion

	// RouteTransactions is the route for listing and submitting transactions.
	// GET returns a page of committed transactions.
	// POST submits a signed transaction to the mempool.
	// MIMEApplicationJSON => json.
	// MIMESignedTransactionBytes => bytes.
	RouteTransactions = "/transactions"

	// RouteTransactionByHash is the route for getting a transaction by its hash.
	// GET returns the committed transaction, or the pending transaction if it still waits in the mempool.
	RouteTransactionByHash = "/transactions/by_hash/:" + restapipkg.ParameterTransactionHash

	// RouteTransactionSubmission is the route for getting the retained outcome of the latest submission of a transaction.
	// GET returns the submission outcome.
	RouteTransactionSubmission = "/transactions/by_hash/:" + restapipkg.ParameterTransactionHash + "/submission"

	// RouteTransactionByVersion is the route for getting a transaction by its version.
	// GET returns the committed transaction.
	RouteTransactionByVersion = "/transactions/by_version/:" + restapipkg.ParameterVersion

	// RouteAccountTransactions is the route for getting the transactions sent by an account.
	// GET returns a page of committed transactions ordered by sequence number.
	RouteAccountTransactions = "/accounts/:" + restapipkg.ParameterAddress + "/transactions"

	// RouteAccountSubmissions is the route for getting the retained submission outcomes of an account.
	// GET returns a page of submission outcomes ordered by sequence number.
	RouteAccountSubmissions = "/accounts/:" + restapipkg.ParameterAddress + "/submissions"

	// RouteAccountResources is the route for getting all resources of an account.
	// GET returns the decoded resources.
	RouteAccountResources = "/accounts/:" + restapipkg.ParameterAddress + "/resources"

	// RouteAccountResource is the route for getting a single resource of an account.
	// GET returns the decoded resource.
	RouteAccountResource = "/accounts/:" + restapipkg.ParameterAddress + "/resource/:" + restapipkg.ParameterResourceType

	// RouteAccountEvents is the route for getting the events of an event stream of an account.
	// GET returns a page of events ordered by sequence number.
	RouteAccountEvents = "/accounts/:" + restapipkg.ParameterAddress + "/events/:" + restapipkg.ParameterCreationNumber
)

const (
	// MIMESignedTransactionBytes is the content type of a signed transaction in its binary encoding.
	MIMESignedTransactionBytes = "application/x.ledger.signed_transaction+bytes"
)

func init() {
	Component = &app.Component{
		Name:      "CoreAPIV1",
		DepsFunc:  func(cDeps dependencies) { deps = cDeps },
		Configure: configure,
		IsEnabled: func(c *dig.Container) bool {
			return restapi.ParamsRestAPI.Enabled
		},
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	RestRouteManager *restapipkg.RestRouteManager
	RequestHandler   *requesthandler.RequestHandler
}

func configure() error {
	// check if RestAPI plugin is disabled
	if !Component.App().IsComponentEnabled(restapi.Component.Identifier()) {
		Component.LogPanicf("RestAPI plugin needs to be enabled to use the %s plugin", Component.Name)
	}

	setupRoutes(deps.RestRouteManager.AddRoute("v1"))

	return nil
}

func setupRoutes(routeGroup *echo.Group) {
	routeGroup.GET(RouteIndex, func(c echo.Context) error {
		resp, err := index(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteHealthy, func(c echo.Context) error {
		resp, err := healthy(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteBlockByVersion, func(c echo.Context) error {
		resp, err := blockByVersion(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteTransactions, func(c echo.Context) error {
		resp, err := transactions(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.POST(RouteTransactions, func(c echo.Context) error {
		statusCode, resp, err := submitTransaction(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, statusCode, resp)
	})

	routeGroup.GET(RouteTransactionByHash, func(c echo.Context) error {
		resp, err := transactionByHash(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteTransactionSubmission, func(c echo.Context) error {
		resp, err := transactionSubmission(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteTransactionByVersion, func(c echo.Context) error {
		resp, err := transactionByVersion(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteAccountTransactions, func(c echo.Context) error {
		resp, err := accountTransactions(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteAccountSubmissions, func(c echo.Context) error {
		resp, err := accountSubmissions(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteAccountResources, func(c echo.Context) error {
		resp, err := accountResources(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteAccountResource, func(c echo.Context) error {
		resp, err := accountResource(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteAccountEvents, func(c echo.Context) error {
		resp, err := accountEvents(c)
		if err != nil {
			return httpError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})
}
