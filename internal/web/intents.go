package web

import (
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/router"
	"taskboard/internal/selector"
)

// bindTask resolves the {id} path value to bound TaskDetail handlers. It writes the error
// response itself and returns false when the request cannot proceed.
func (s *Server) bindTask(w http.ResponseWriter, r *http.Request) (selector.TaskDetailHandlers, bool) {
	if s.cfg.ReadOnly {
		http.Error(w, "read-only", http.StatusForbidden)
		return selector.TaskDetailHandlers{}, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return selector.TaskDetailHandlers{}, false
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if _, ok := s.store.State().FindTask(id); !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return selector.TaskDetailHandlers{}, false
	}
	return selector.BindTaskDetail(s.store, selector.TaskContext{TaskID: id}), true
}

func redirectToTask(w http.ResponseWriter, r *http.Request, id string) {
	http.Redirect(w, r, router.TaskPath(id), http.StatusSeeOther)
}

func (s *Server) handleTaskName(w http.ResponseWriter, r *http.Request) {
	h, ok := s.bindTask(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(r.Form.Get("name"))
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	h.SetTaskName(name)
	redirectToTask(w, r, h.TaskID())
}

func (s *Server) handleTaskGroup(w http.ResponseWriter, r *http.Request) {
	h, ok := s.bindTask(w, r)
	if !ok {
		return
	}
	group := strings.TrimSpace(r.Form.Get("group"))
	if group == "" {
		http.Error(w, "missing group", http.StatusBadRequest)
		return
	}
	h.SetTaskGroup(group)
	redirectToTask(w, r, h.TaskID())
}

func (s *Server) handleTaskCompletion(w http.ResponseWriter, r *http.Request) {
	h, ok := s.bindTask(w, r)
	if !ok {
		return
	}
	isComplete, err := strconv.ParseBool(strings.TrimSpace(r.Form.Get("isComplete")))
	if err != nil {
		http.Error(w, "invalid isComplete", http.StatusBadRequest)
		return
	}
	h.SetTaskCompletion(isComplete)
	redirectToTask(w, r, h.TaskID())
}

// Blank comments are a no-op in the reducer; the form still redirects back.
func (s *Server) handleTaskComment(w http.ResponseWriter, r *http.Request) {
	h, ok := s.bindTask(w, r)
	if !ok {
		return
	}
	h.AddComment(r.Form.Get("commentContents"))
	redirectToTask(w, r, h.TaskID())
}
