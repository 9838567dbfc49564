// Package web serves the task board over HTTP: server-rendered pages, form intents, a datastar
// SSE stream that re-renders the routed view, a websocket action feed and a small JSON API.
package web

import (
	"bufio"
	"embed"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskboard/internal/router"
	"taskboard/internal/store"
	"taskboard/internal/view"
)

//go:embed static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr     string
	Store    *store.Store
	ReadOnly bool
	// DatastarSrc is the script URL for the datastar client. Empty disables live updates.
	DatastarSrc string
	Logger      *slog.Logger
}

type Server struct {
	cfg   ServerConfig
	store *store.Store
	views *view.Renderer
	pages view.Connected
	hub   *changeHub
	log   *slog.Logger

	detach func()
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.DatastarSrc = strings.TrimSpace(cfg.DatastarSrc)
	if cfg.Store == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	r, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	srv := &Server{
		cfg:   cfg,
		store: cfg.Store,
		views: r,
		pages: view.Connected{R: r, Memo: view.NewMemo()},
		hub:   newChangeHub(),
		log:   cfg.Logger.With("component", "web"),
	}
	srv.detach = cfg.Store.Subscribe(srv.hub.listen)
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close detaches from the store and ends live streams.
func (s *Server) Close() {
	if s.detach != nil {
		s.detach()
	}
	s.hub.close()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/state", s.handleAPIState)
	mux.HandleFunc("POST /api/actions", s.handleAPIActions)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /tasks/{id}", s.handleTask)
	mux.HandleFunc("POST /tasks/{id}/name", s.handleTaskName)
	mux.HandleFunc("POST /tasks/{id}/group", s.handleTaskGroup)
	mux.HandleFunc("POST /tasks/{id}/completion", s.handleTaskCompletion)
	mux.HandleFunc("POST /tasks/{id}/comments", s.handleTaskComment)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return s.withLogging(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the websocket upgrade take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("web: response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "dur", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, router.DashboardPath(), http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeRoute(w, router.Dashboard())
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	s.writeRoute(w, router.Task(r.PathValue("id")))
}

func streamURL(route router.Route) string {
	return "/events?path=" + url.QueryEscape(route.Path())
}

func (s *Server) renderPage(route router.Route) (string, int, error) {
	tree := s.store.State()
	sc, err := s.pages.RenderRoute(tree, route)
	if err != nil {
		return "", 0, err
	}
	nav, err := s.pages.Navigation(tree)
	if err != nil {
		return "", 0, err
	}
	vm := view.PageVM{
		Title:       sc.Title,
		Nav:         nav,
		Main:        sc.Main,
		DatastarSrc: s.cfg.DatastarSrc,
	}
	if s.cfg.DatastarSrc != "" {
		vm.StreamURL = streamURL(route)
	}
	html, err := s.views.Page(vm)
	return html, sc.Status, err
}

func (s *Server) writeRoute(w http.ResponseWriter, route router.Route) {
	html, status, err := s.renderPage(route)
	if err != nil {
		s.log.Error("render failed", "route", route.Path(), "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}
