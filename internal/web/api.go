package web

import (
	"encoding/json"
	"io"
	"net/http"

	"taskboard/internal/action"
	"taskboard/internal/format"
	"taskboard/internal/state"
)

type stateResponse struct {
	Version uint64     `json:"version"`
	State   state.Tree `json:"state"`
}

type dispatchResponse struct {
	Version uint64 `json:"version"`
	Changed bool   `json:"changed"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = format.WriteJSON(w, v, false)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	tree, version := s.store.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{Version: version, State: tree.Normalize()})
}

// handleAPIActions dispatches one action encoded as {"type": ..., ...payload}. A valid action
// that changes nothing (unknown task, same value) still answers 200 with changed=false.
func (s *Server) handleAPIActions(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		writeJSONError(w, http.StatusForbidden, "read-only")
		return
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, wsMaxMessage))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !json.Valid(b) {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	a, err := action.Decode(b)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := s.store.Dispatch(a)
	writeJSON(w, http.StatusOK, dispatchResponse{Version: c.Version, Changed: c.Changed})
}
