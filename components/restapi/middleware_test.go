package restapi

import (
	"crypto/ed25519"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/ledgerapi/pkg/jwt"
)

func newTestAuth(t *testing.T, salt string) *jwt.Auth {
	_, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	auth, err := jwt.NewAuth(salt, 0, jwt.NodeID(privateKey), privateKey)
	require.NoError(t, err)

	return auth
}

func newMiddlewareEcho(t *testing.T, publicRoutes []string, protectedRoutes []string, jwtAuth *jwt.Auth) *echo.Echo {
	apiMiddlewareFunc, err := apiMiddleware(publicRoutes, protectedRoutes, jwtAuth)
	require.NoError(t, err)

	e := echo.New()
	e.Use(apiMiddlewareFunc)
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/health", ok)
	e.GET("/v1", ok)
	e.GET("/v1/transactions", ok)
	e.GET("/debug/pprof", ok)
	e.POST("/management/v1/database/prune", ok)

	return e
}

func serve(e *echo.Echo, method string, path string, token string) int {
	request := httptest.NewRequest(method, path, nil)
	if token != "" {
		request.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)

	return recorder.Code
}

func TestAPIMiddleware_DefaultRoutes(t *testing.T) {
	e := newMiddlewareEcho(t, ParamsRestAPI.PublicRoutes, ParamsRestAPI.ProtectedRoutes, nil)

	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", ""))
	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1", ""))
	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/transactions", ""))
	require.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/debug/pprof", ""))

	// management routes are neither public nor reachable without a configured key
	require.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/management/v1/database/prune", ""))
}

func TestAPIMiddleware_ProtectedRoutes(t *testing.T) {
	auth := newTestAuth(t, "salt")
	e := newMiddlewareEcho(t, ParamsRestAPI.PublicRoutes, ParamsRestAPI.ProtectedRoutes, auth)

	token, err := auth.IssueJWT()
	require.NoError(t, err)

	foreignToken, err := newTestAuth(t, "salt").IssueJWT()
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/transactions", ""))
	require.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/debug/pprof", token))

	require.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/management/v1/database/prune", ""))
	require.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/management/v1/database/prune", "not-a-token"))
	require.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/management/v1/database/prune", foreignToken))
	require.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/management/v1/database/prune", token))
}

func TestAPIMiddleware_InvalidRoutes(t *testing.T) {
	_, err := apiMiddleware([]string{"^("}, nil, nil)
	require.Error(t, err)

	_, err = apiMiddleware(nil, []string{"^("}, nil)
	require.Error(t, err)
}
