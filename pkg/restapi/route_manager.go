package restapi

import (
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/runtime/syncutils"
)

// RestRouteManager hands out echo groups per API prefix and keeps track of the registered prefixes.
type RestRouteManager struct {
	echo   *echo.Echo
	routes map[string]*echo.Group
	mutex  syncutils.RWMutex
}

func NewRestRouteManager(e *echo.Echo) *RestRouteManager {
	return &RestRouteManager{
		echo:   e,
		routes: make(map[string]*echo.Group),
	}
}

// AddRoute returns the group serving "/<prefix>". Adding the same prefix twice returns the same group.
func (p *RestRouteManager) AddRoute(prefix string) *echo.Group {
	prefix = strings.Trim(prefix, "/")

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if group, exists := p.routes[prefix]; exists {
		return group
	}

	group := p.echo.Group("/" + prefix)
	p.routes[prefix] = group

	return group
}

// Routes returns the registered prefixes in lexical order.
func (p *RestRouteManager) Routes() []string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	routes := make([]string, 0, len(p.routes))
	for route := range p.routes {
		routes = append(routes, route)
	}
	sort.Strings(routes)

	return routes
}
