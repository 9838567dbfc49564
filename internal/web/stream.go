package web

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"taskboard/internal/router"
	"taskboard/internal/view"
)

const (
	mainSelector = "#taskboard-main"
	navSelector  = "#taskboard-nav"
)

var keepAliveInterval = 25 * time.Second

// handleEvents streams re-rendered views for the route in ?path= whenever the store changes.
// Each stream memoizes its own renders so unchanged views are not re-sent.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	route, ok := router.Match(r.URL.Query().Get("path"))
	if !ok {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	ch, cancel := s.hub.subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	conn := view.Connected{R: s.views, Memo: view.NewMemo()}
	var lastMain, lastNav template.HTML

	push := func() {
		tree, version := s.store.Snapshot()
		sc, err := conn.RenderRoute(tree, route)
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		if sc.Main != lastMain {
			_ = sse.PatchElements(string(sc.Main), datastar.WithSelector(mainSelector), datastar.WithMode(datastar.ElementPatchModeInner))
			lastMain = sc.Main
		}
		nav, err := conn.Navigation(tree)
		if err == nil && nav != lastNav {
			_ = sse.PatchElements(string(nav), datastar.WithSelector(navSelector), datastar.WithMode(datastar.ElementPatchModeOuter))
			lastNav = nav
		}
		_ = sse.MarshalAndPatchSignals(map[string]any{"version": version})
	}

	// The page already holds the current render; remember it without re-sending.
	tree, version := s.store.Snapshot()
	if sc, err := conn.RenderRoute(tree, route); err == nil {
		lastMain = sc.Main
	}
	if nav, err := conn.Navigation(tree); err == nil {
		lastNav = nav
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"version": version})

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-s.hub.done:
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			push()
		}
	}
}
