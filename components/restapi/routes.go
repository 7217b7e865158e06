package restapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/inx-app/pkg/httpserver"
)

const (
	// RouteHealth is the route for querying the liveness of the node.
	// GET returns 200 as long as the ledger can be read.
	RouteHealth = "/health"

	// RouteRoutes is the route for listing the registered API prefixes.
	RouteRoutes = "/api/routes"
)

type RoutesResponse struct {
	Routes []string `json:"routes"`
}

func setupRoutes() {
	deps.Echo.GET(RouteHealth, func(c echo.Context) error {
		if _, err := deps.RequestHandler.LatestLedgerInfo(); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	})

	deps.Echo.GET(RouteRoutes, func(c echo.Context) error {
		resp := &RoutesResponse{
			Routes: deps.RestRouteManager.Routes(),
		}

		return httpserver.JSONResponse(c, http.StatusOK, resp)
	})
}
