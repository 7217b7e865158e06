package management

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/components/restapi"
	restapipkg "github.com/iotaledger/ledgerapi/pkg/restapi"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
)

const (
	// RouteDatabasePrune is the route to manually prune the database.
	// POST prunes the database.
	RouteDatabasePrune = "/database/prune"
)

func init() {
	Component = &app.Component{
		Name:      "ManagementAPIV1",
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
	Store            *memstore.Store
}

func configure() error {
	// check if RestAPI plugin is disabled
	if !Component.App().IsComponentEnabled(restapi.Component.Identifier()) {
		Component.LogPanicf("RestAPI plugin needs to be enabled to use the %s plugin", Component.Name)
	}

	setupRoutes(deps.RestRouteManager.AddRoute("management/v1"))

	return nil
}

func setupRoutes(routeGroup *echo.Group) {
	routeGroup.POST(RouteDatabasePrune, func(c echo.Context) error {
		resp, err := pruneDatabase(c)
		if err != nil {
			return restapipkg.HTTPError(err)
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})
}
