// Package router maps URL paths to views.
//
// There are two reachable view-states: the dashboard and the detail form of one task.
package router

import (
	"net/url"
	"strings"

	"taskboard/internal/selector"
)

type View string

const (
	ViewDashboard  View = "dashboard"
	ViewTaskDetail View = "task-detail"
)

const (
	dashboardPath = "/dashboard"
	tasksPrefix   = "/tasks/"
)

type Route struct {
	View   View
	Params selector.RouteParams
}

// Path renders the canonical path of r.
func (r Route) Path() string {
	switch r.View {
	case ViewTaskDetail:
		return TaskPath(r.Params.ID)
	default:
		return DashboardPath()
	}
}

func DashboardPath() string { return dashboardPath }

func TaskPath(id string) string {
	return tasksPrefix + url.PathEscape(strings.TrimSpace(id))
}

// Dashboard is the route the "Done" control returns to.
func Dashboard() Route { return Route{View: ViewDashboard} }

func Task(id string) Route {
	return Route{View: ViewTaskDetail, Params: selector.RouteParams{ID: strings.TrimSpace(id)}}
}

// Match resolves path to a route. "/" and "" resolve to the dashboard.
// Task ids are not checked against the state; an unknown id matches and the view renders
// its not-found fallback.
func Match(path string) (Route, bool) {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	switch path {
	case "", "/", dashboardPath:
		return Dashboard(), true
	}
	if !strings.HasPrefix(path, tasksPrefix) {
		return Route{}, false
	}
	raw := strings.TrimPrefix(path, tasksPrefix)
	if raw == "" || strings.Contains(raw, "/") {
		return Route{}, false
	}
	id, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(id) == "" {
		return Route{}, false
	}
	return Task(id), true
}
