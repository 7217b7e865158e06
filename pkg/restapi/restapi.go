package restapi

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/ierrors"
)

// CompileRouteAsRegex turns a route pattern into a regex. Patterns starting with "^" are taken as raw regex,
// otherwise the pattern has to match the whole path and "*" matches any suffix.
func CompileRouteAsRegex(route string) (*regexp.Regexp, error) {
	if strings.HasPrefix(route, "^") {
		return regexp.Compile(route)
	}

	return regexp.Compile("^" + strings.ReplaceAll(regexp.QuoteMeta(route), `\*`, "(.*?)") + "$")
}

func CompileRoutesAsRegexes(routes []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, len(routes))
	for i, route := range routes {
		reg, err := CompileRouteAsRegex(route)
		if err != nil {
			return nil, ierrors.Wrapf(err, "invalid route in config: %s", route)
		}
		regexes[i] = reg
	}

	return regexes, nil
}

// MatchesAny reports whether the lowered path matches one of the regexes.
func MatchesAny(regexes []*regexp.Regexp, path string) bool {
	loweredPath := strings.ToLower(path)
	for _, reg := range regexes {
		if reg.MatchString(loweredPath) {
			return true
		}
	}

	return false
}

// HTTPError converts err into an *echo.HTTPError with the status code of the HTTP error it wraps.
// Errors that wrap no HTTP error become an internal server error.
func HTTPError(err error) error {
	statusCode := http.StatusInternalServerError

	var httpErr *echo.HTTPError
	if ierrors.As(err, &httpErr) {
		statusCode = httpErr.Code
	}

	return echo.NewHTTPError(statusCode, err.Error()).SetInternal(err)
}
