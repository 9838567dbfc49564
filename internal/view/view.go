// Package view renders the dashboard, task list, task detail and navigation views to HTML.
//
// Views only read props produced by the selector package; they never touch the store.
package view

import (
	"embed"
	"html/template"
	"net/url"
	"strings"

	"taskboard/internal/router"
	"taskboard/internal/selector"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":          strings.TrimSpace,
		"markdown":      renderMarkdownHTML,
		"taskPath":      router.TaskPath,
		"dashboardPath": router.DashboardPath,
		"queryEscape":   url.QueryEscape,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) render(name string, data any) (template.HTML, error) {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func (r *Renderer) Navigation(p selector.NavigationProps) (template.HTML, error) {
	return r.render("navigation", p)
}

func (r *Renderer) TaskList(p selector.TaskListProps) (template.HTML, error) {
	return r.render("task_list", p)
}

type dashboardVM struct {
	Lists []template.HTML
}

// Dashboard lays out already rendered task lists, one per group, in group order.
func (r *Renderer) Dashboard(lists []template.HTML) (template.HTML, error) {
	return r.render("dashboard", dashboardVM{Lists: lists})
}

// TaskDetail renders the detail form. Props that fail Validate are rejected rather than
// rendered half-empty.
func (r *Renderer) TaskDetail(p selector.TaskDetailProps) (template.HTML, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	return r.render("task_detail", p)
}

type notFoundVM struct {
	ID string
}

func (r *Renderer) NotFound(id string) (template.HTML, error) {
	return r.render("not_found", notFoundVM{ID: id})
}

// PageVM is a full document: navigation header plus the routed main view.
type PageVM struct {
	Title       string
	Nav         template.HTML
	Main        template.HTML
	StreamURL   string
	DatastarSrc string
}

func (r *Renderer) Page(vm PageVM) (string, error) {
	if strings.TrimSpace(vm.StreamURL) == "" {
		vm.DatastarSrc = ""
	}
	h, err := r.render("page", vm)
	return string(h), err
}
