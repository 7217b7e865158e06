package restapi

import (
	"github.com/labstack/echo/v4"

	"github.com/iotaledger/ledgerapi/pkg/jwt"
	"github.com/iotaledger/ledgerapi/pkg/restapi"
)

// apiMiddleware serves public routes to everyone and protected routes only to requests carrying a token of jwtAuth.
// Without jwtAuth the protected routes are rejected like every route that is not exposed.
func apiMiddleware(publicRoutes []string, protectedRoutes []string, jwtAuth *jwt.Auth) (echo.MiddlewareFunc, error) {
	publicRoutesRegEx, err := restapi.CompileRoutesAsRegexes(publicRoutes)
	if err != nil {
		return nil, err
	}

	protectedRoutesRegEx, err := restapi.CompileRoutesAsRegexes(protectedRoutes)
	if err != nil {
		return nil, err
	}

	matchPublic := func(c echo.Context) bool {
		return restapi.MatchesAny(publicRoutesRegEx, c.Request().URL.Path)
	}

	matchProtected := func(c echo.Context) bool {
		return jwtAuth != nil && restapi.MatchesAny(protectedRoutesRegEx, c.Request().URL.Path)
	}

	jwtAllow := func(c echo.Context, subject string, claims *jwt.AuthClaims) bool {
		return matchProtected(c) && claims.VerifySubject(subject)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if jwtAuth == nil {
			return func(c echo.Context) error {
				if matchPublic(c) {
					return next(c)
				}

				return echo.ErrForbidden
			}
		}

		jwtMiddlewareHandler := jwtAuth.Middleware(matchPublic, jwtAllow)(next)

		return func(c echo.Context) error {
			if matchPublic(c) || matchProtected(c) {
				return jwtMiddlewareHandler(c)
			}

			return echo.ErrForbidden
		}
	}, nil
}
