package restapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/app"
	"github.com/iotaledger/hive.go/crypto"
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/pkg/daemon"
	"github.com/iotaledger/ledgerapi/pkg/jwt"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/restapi"
)

func init() {
	Component = &app.Component{
		Name:             "RestAPI",
		DepsFunc:         func(cDeps dependencies) { deps = cDeps },
		Params:           params,
		InitConfigParams: initConfigParams,
		Provide:          provide,
		Configure:        configure,
		Run:              run,
		IsEnabled: func(c *dig.Container) bool {
			return ParamsRestAPI.Enabled
		},
	}
}

var (
	Component *app.Component
	deps      dependencies
)

type dependencies struct {
	dig.In

	Echo               *echo.Echo
	RestAPIBindAddress string `name:"restAPIBindAddress"`
	RestRouteManager   *restapi.RestRouteManager
	RequestHandler     *requesthandler.RequestHandler
}

func initConfigParams(c *dig.Container) error {
	type cfgResult struct {
		dig.Out
		RestAPIBindAddress string `name:"restAPIBindAddress"`
	}

	if err := c.Provide(func() cfgResult {
		return cfgResult{
			RestAPIBindAddress: ParamsRestAPI.BindAddress,
		}
	}); err != nil {
		Component.LogPanic(err.Error())
	}

	return nil
}

func provide(c *dig.Container) error {
	type echoDeps struct {
		dig.In

		RequestHandler *requesthandler.RequestHandler
	}

	if err := c.Provide(func(deps echoDeps) *echo.Echo {
		e := httpserver.NewEcho(
			Component.Logger(),
			nil,
			ParamsRestAPI.DebugRequestLoggerEnabled,
		)
		e.Use(middleware.CORS())
		e.Use(middleware.Gzip())
		e.Use(middleware.BodyLimit(strconv.FormatUint(deps.RequestHandler.ContentLengthLimit(), 10)))

		return e
	}); err != nil {
		Component.LogPanic(err.Error())
	}

	if err := c.Provide(func(e *echo.Echo) *restapi.RestRouteManager {
		return restapi.NewRestRouteManager(e)
	}); err != nil {
		Component.LogPanic(err.Error())
	}

	return nil
}

func configure() error {
	salt := ParamsRestAPI.JWTAuth.Salt
	if len(salt) == 0 {
		Component.LogFatalf("'%s' should not be empty", Component.App().Config().GetParameterPath(&(ParamsRestAPI.JWTAuth.Salt)))
	}

	var jwtAuth *jwt.Auth
	if len(ParamsRestAPI.JWTAuth.PrivateKey) == 0 {
		Component.LogWarnf("'%s' is empty, protected routes are rejected", Component.App().Config().GetParameterPath(&(ParamsRestAPI.JWTAuth.PrivateKey)))
	} else {
		privateKey, err := crypto.ParseEd25519PrivateKeyFromString(ParamsRestAPI.JWTAuth.PrivateKey)
		if err != nil {
			Component.LogFatalf("invalid '%s': %s", Component.App().Config().GetParameterPath(&(ParamsRestAPI.JWTAuth.PrivateKey)), err)
		}

		// API tokens do not expire.
		jwtAuth, err = jwt.NewAuth(salt, 0, jwt.NodeID(privateKey), privateKey)
		if err != nil {
			Component.LogPanicf("JWT auth initialization failed: %s", err)
		}
	}

	apiMiddlewareFunc, err := apiMiddleware(ParamsRestAPI.PublicRoutes, ParamsRestAPI.ProtectedRoutes, jwtAuth)
	if err != nil {
		return err
	}

	deps.Echo.Use(apiMiddlewareFunc)
	setupRoutes()

	return nil
}

func run() error {
	Component.LogInfo("Starting REST-API server ...")

	if err := Component.Daemon().BackgroundWorker("REST-API server", func(ctx context.Context) {
		Component.LogInfo("Starting REST-API server ... done")

		bindAddr := deps.RestAPIBindAddress

		go func() {
			Component.LogInfof("You can now access the API using: http://%s", bindAddr)
			if err := deps.Echo.Start(bindAddr); err != nil && !ierrors.Is(err, http.ErrServerClosed) {
				Component.LogWarnf("Stopped REST-API server due to an error (%s)", err)
			}
		}()

		<-ctx.Done()
		Component.LogInfo("Stopping REST-API server ...")

		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCtxCancel()

		//nolint:contextcheck // false positive
		if err := deps.Echo.Shutdown(shutdownCtx); err != nil {
			Component.LogWarn(err.Error())
		}

		Component.LogInfo("Stopping REST-API server ... done")
	}, daemon.PriorityRestAPI); err != nil {
		Component.LogPanicf("failed to start worker: %s", err)
	}

	return nil
}
