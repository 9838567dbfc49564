package view

import (
	"errors"
	"html/template"
	"net/http"

	"taskboard/internal/router"
	"taskboard/internal/selector"
	"taskboard/internal/state"
)

// Screen is the routed main view for one state snapshot.
type Screen struct {
	Route  router.Route
	Title  string
	Main   template.HTML
	Status int
}

// Connected binds the renderer to state through the selectors. A nil Memo renders every time.
type Connected struct {
	R    *Renderer
	Memo *Memo
}

func (c Connected) memo(key string, props any, render func() (template.HTML, error)) (template.HTML, error) {
	if c.Memo == nil {
		return render()
	}
	out, _, err := c.Memo.Render(key, props, render)
	return out, err
}

func (c Connected) Navigation(t state.Tree) (template.HTML, error) {
	p := selector.Navigation(t, router.DashboardPath())
	return c.memo("navigation", p, func() (template.HTML, error) { return c.R.Navigation(p) })
}

func (c Connected) TaskList(t state.Tree, groupID string) (template.HTML, error) {
	p := selector.TaskList(t, groupID)
	return c.memo("task_list:"+groupID, p, func() (template.HTML, error) { return c.R.TaskList(p) })
}

// Dashboard renders one connected task list per group, keyed by group id.
func (c Connected) Dashboard(t state.Tree) (template.HTML, error) {
	p := selector.Dashboard(t)
	lists := make([]template.HTML, 0, len(p.Groups))
	for _, g := range p.Groups {
		h, err := c.TaskList(t, g.ID)
		if err != nil {
			return "", err
		}
		lists = append(lists, h)
	}
	return c.R.Dashboard(lists)
}

func (c Connected) TaskDetail(t state.Tree, params selector.RouteParams) (template.HTML, error) {
	p, err := selector.TaskDetail(t, params)
	if err != nil {
		return "", err
	}
	return c.memo("task_detail:"+p.ID, p, func() (template.HTML, error) { return c.R.TaskDetail(p) })
}

// RenderRoute renders the main view for route. An unknown task id renders the not-found
// view with status 404 instead of failing.
func (c Connected) RenderRoute(t state.Tree, route router.Route) (Screen, error) {
	sc := Screen{Route: route, Title: selector.AppTitle, Status: http.StatusOK}
	switch route.View {
	case router.ViewTaskDetail:
		h, err := c.TaskDetail(t, route.Params)
		if errors.Is(err, selector.ErrNotFound) {
			h, err = c.R.NotFound(route.Params.ID)
			if err != nil {
				return Screen{}, err
			}
			sc.Status = http.StatusNotFound
			sc.Title = "Task not found"
			sc.Main = h
			return sc, nil
		}
		if err != nil {
			return Screen{}, err
		}
		if task, ok := t.FindTask(route.Params.ID); ok {
			sc.Title = task.Name + " | " + selector.AppTitle
		}
		sc.Main = h
	default:
		h, err := c.Dashboard(t)
		if err != nil {
			return Screen{}, err
		}
		sc.Main = h
	}
	return sc, nil
}
