package wizardhttp

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Route is one method and path served by the component, relative to the
// mount base path.
type Route struct {
	Method string
	Path   string
}

type boundRoute struct {
	Route
	handler http.Handler
}

func (c *Component) table() []boundRoute {
	s := func(method, path string, fn sessionFunc) boundRoute {
		return boundRoute{Route: Route{Method: method, Path: path}, handler: c.withSession(fn)}
	}
	g := func(method, path string, fn func(http.ResponseWriter, *http.Request) error) boundRoute {
		return boundRoute{Route: Route{Method: method, Path: path}, handler: c.guarded(fn)}
	}
	return []boundRoute{
		s(http.MethodGet, "/survey/steps", c.getSteps),
		s(http.MethodGet, "/survey/state", c.getState),
		s(http.MethodPut, "/survey/groups/{group}/fields/{field}", c.putField),
		s(http.MethodPost, "/survey/criteria", c.postCriterion),
		s(http.MethodDelete, "/survey/criteria/{name}", c.deleteCriterion),
		s(http.MethodPost, "/survey/criteria/{index}/options", c.postOption),
		s(http.MethodPut, "/survey/criteria/{index}/options/{option}", c.putOption),
		s(http.MethodDelete, "/survey/criteria/{index}/options/{option}", c.deleteOption),
		s(http.MethodPost, "/survey/navigate", c.postNavigate),
		s(http.MethodPost, "/survey/next", c.postNext),
		s(http.MethodPost, "/survey/previous", c.postPrevious),
		s(http.MethodPost, "/survey/cancel", c.postCancel),
		s(http.MethodPost, "/survey/finish", c.postFinish),
		g(http.MethodGet, "/api/scenarios", c.listScenarios),
		g(http.MethodPost, "/api/scenarios", c.postScenario),
		g(http.MethodGet, "/api/scenarios/{id}", c.getScenario),
		g(http.MethodPatch, "/api/scenarios/{id}", c.patchScenario),
		g(http.MethodDelete, "/api/scenarios/{id}", c.deleteScenario),
		g(http.MethodGet, "/api/openapi.json", c.getContract),
	}
}

// Routes lists every route the component serves.
func (c *Component) Routes() []Route {
	table := c.table()
	out := make([]Route, 0, len(table))
	for _, r := range table {
		out = append(out, r.Route)
	}
	return out
}

// RegisterRoutes registers every route under basePath on mux and returns the
// registered patterns.
func (c *Component) RegisterRoutes(mux Mux, basePath string) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("wizardhttp: missing component")
	}
	if mux == nil {
		return nil, fmt.Errorf("wizardhttp: missing mux")
	}
	table := c.table()
	patterns := make([]string, 0, len(table))
	for _, r := range table {
		pattern := r.Method + " " + mountPath(basePath, r.Path)
		mux.Handle(pattern, r.handler)
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
