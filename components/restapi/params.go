package restapi

import (
	"github.com/iotaledger/hive.go/app"
)

// ParametersRestAPI contains the definition of the parameters used by REST API.
type ParametersRestAPI struct {
	// Enabled defines whether the REST API plugin is enabled.
	Enabled bool `default:"true" usage:"whether the REST API plugin is enabled"`
	// the bind address on which the REST API listens on
	BindAddress string `default:"0.0.0.0:8080" usage:"the bind address on which the REST API listens on"`
	// the HTTP REST routes which can be called without authorization. Wildcards using * are allowed
	PublicRoutes []string `usage:"the HTTP REST routes which can be called without authorization. Wildcards using * are allowed"`
	// the HTTP REST routes which need to be called with authorization. Wildcards using * are allowed
	ProtectedRoutes []string `usage:"the HTTP REST routes which need to be called with authorization. Wildcards using * are allowed"`
	// whether the debug logging for requests should be enabled
	DebugRequestLoggerEnabled bool `default:"false" usage:"whether the debug logging for requests should be enabled"`

	JWTAuth struct {
		// salt used inside the JWT tokens for the REST API. Change this to a different value to invalidate JWT tokens not matching this new value
		Salt string `default:"LEDGERAPI" usage:"salt used inside the JWT tokens for the REST API. Change this to a different value to invalidate JWT tokens not matching this new value"`
		// the hex encoded ed25519 private key the JWT secret is derived from
		PrivateKey string `default:"" usage:"the hex encoded ed25519 private key the JWT secret is derived from. Protected routes are rejected while it is empty"`
	} `name:"jwtAuth"`

	Limits struct {
		// DefaultPageSize is the number of results of a paginated endpoint if no limit is given.
		DefaultPageSize uint16 `default:"25" usage:"the number of results of a paginated endpoint if no limit is given"`
		// MaxPageSize is the maximum number of results of a paginated endpoint.
		MaxPageSize uint16 `default:"100" usage:"the maximum number of results of a paginated endpoint"`
	}
}

var ParamsRestAPI = &ParametersRestAPI{
	PublicRoutes: []string{
		"/health",
		"/api/routes",
		"/v1*",
	},
	ProtectedRoutes: []string{
		"/management/*",
	},
}

var params = &app.ComponentParams{
	Params: map[string]any{
		"restAPI": ParamsRestAPI,
	},
	Masked: []string{"restAPI.jwtAuth.salt", "restAPI.jwtAuth.privateKey"},
}
