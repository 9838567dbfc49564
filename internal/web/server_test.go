package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"taskboard/internal/action"
	"taskboard/internal/model"
	"taskboard/internal/mutate"
	"taskboard/internal/state"
	"taskboard/internal/store"
)

func fixture() state.Tree {
	return state.Tree{
		Groups: []model.Group{{ID: "g1", Name: "Home"}, {ID: "g2", Name: "Work"}},
		Tasks: []model.Task{
			{ID: "t1", Name: "Buy milk", Group: "g1"},
			{ID: "t2", Name: "Ship release", Group: "g2"},
		},
		Comments: []model.Comment{},
	}
}

func newTestServer(t *testing.T, readOnly bool) (*Server, *store.Store) {
	t.Helper()
	st := store.New(fixture(), mutate.Reduce)
	srv, err := NewServer(ServerConfig{
		Addr:        "127.0.0.1:0",
		Store:       st,
		ReadOnly:    readOnly,
		DatastarSrc: "/static/datastar.js",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHome_RedirectsToDashboard(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDashboardPage(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"My Application", "Dashboard", "Home", "Work", `/events?path=%2Fdashboard`, `href="/tasks/t1"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestTaskPage_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/tasks/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Task not found") {
		t.Fatalf("expected not-found page:\n%s", rec.Body.String())
	}
}

func TestIntents(t *testing.T) {
	srv, st := newTestServer(t, false)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/tasks/t1/name", url.Values{"name": {"Buy oat milk"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/tasks/t1" {
		t.Fatalf("rename: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = do(t, h, http.MethodPost, "/tasks/t1/completion", url.Values{"isComplete": {"true"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("complete: %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/tasks/t1/comments", url.Values{"commentContents": {"got it"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("comment: %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/tasks/t1/group", url.Values{"group": {"g9"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("group: %d", rec.Code)
	}

	got, _ := st.State().FindTask("t1")
	want := model.Task{ID: "t1", Name: "Buy oat milk", Group: "g9", IsComplete: true}
	if got != want {
		t.Fatalf("t1 = %+v, want %+v", got, want)
	}
	if n := len(st.State().CommentsForTask("t1")); n != 1 {
		t.Fatalf("comments = %d", n)
	}

	rec = do(t, h, http.MethodGet, "/tasks/t1", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "(unknown group: g9)") {
		t.Fatalf("detail after dangling move: %d\n%s", rec.Code, rec.Body.String())
	}
}

func TestIntents_Errors(t *testing.T) {
	srv, st := newTestServer(t, false)
	h := srv.Handler()
	before := st.Version()

	if rec := do(t, h, http.MethodPost, "/tasks/t1/completion", url.Values{"isComplete": {"maybe"}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad bool: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/tasks/t1/name", url.Values{"name": {"  "}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/tasks/nope/name", url.Values{"name": {"x"}}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown task: %d", rec.Code)
	}
	if st.Version() != before {
		t.Fatalf("failed intents must not dispatch")
	}
}

func TestReadOnly(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Handler()
	if rec := do(t, h, http.MethodPost, "/tasks/t1/name", url.Values{"name": {"x"}}); rec.Code != http.StatusForbidden {
		t.Fatalf("form: %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(`{"type":"SET_TASK_NAME","id":"t1","name":"x"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("api: %d", rec.Code)
	}
}

func TestAPI(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(`{"type":"SET_TASK_COMPLETE","id":"t2","isComplete":true}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var dr dispatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &dr); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("dispatch: %d %s", rec.Code, rec.Body.String())
	}
	if !dr.Changed || dr.Version != 1 {
		t.Fatalf("unexpected dispatch response: %+v", dr)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(`{"type":"DELETE_EVERYTHING"}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown type: %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/state", nil)
	var sr stateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sr); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if sr.Version != 1 || !sr.State.Tasks[1].IsComplete {
		t.Fatalf("unexpected state: %+v", sr)
	}
}

func TestHealthAndCSS(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.Handler()
	if rec := do(t, h, http.MethodGet, "/health", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/static/app.css", nil); rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("css: %d", rec.Code)
	}
}

func TestEvents_InvalidPath(t *testing.T) {
	srv, _ := newTestServer(t, false)
	if rec := do(t, srv.Handler(), http.MethodGet, "/events?path=/nowhere", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEvents_StreamsRerender(t *testing.T) {
	srv, st := newTestServer(t, false)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?path="+url.QueryEscape("/tasks/t1"), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	st.Dispatch(action.SetTaskName("t1", "Renamed over SSE"))

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if strings.Contains(sc.Text(), "Renamed over SSE") {
			return
		}
	}
	t.Fatalf("stream ended without the re-render: %v", sc.Err())
}

func TestHub_DropsForSlowSubscribers(t *testing.T) {
	h := newChangeHub()
	ch, cancel := h.subscribe()
	defer cancel()
	for i := 0; i < 20; i++ {
		h.listen(store.Change{Changed: true, Version: uint64(i + 1)})
	}
	h.listen(store.Change{Changed: false})
	if len(ch) != cap(ch) {
		t.Fatalf("buffer = %d, want full %d", len(ch), cap(ch))
	}
	cancel()
	if h.subscribers() != 0 {
		t.Fatalf("cancel did not unsubscribe")
	}
}

func TestWS_DispatchAndFeed(t *testing.T) {
	srv, st := newTestServer(t, false)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello wsMessage
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "hello" {
		t.Fatalf("hello: %+v %v", hello, err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"SET_TASK_NAME","id":"t2","name":"Ship v2"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	seen := map[string]wsMessage{}
	for len(seen) < 2 {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v (seen %v)", err, seen)
		}
		seen[msg.Type] = msg
	}
	if ack := seen["ack"]; !ack.Changed || ack.Version != 1 {
		t.Fatalf("ack = %+v", ack)
	}
	a, err := action.Decode(seen["change"].Action)
	if err != nil || a.Type() != action.TypeSetTaskName {
		t.Fatalf("change action = %s %v", seen["change"].Action, err)
	}
	if got, _ := st.State().FindTask("t2"); got.Name != "Ship v2" {
		t.Fatalf("t2 = %+v", got)
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		host   string
		origin string
		want   bool
	}{
		{name: "no origin", host: "board.local", origin: "", want: true},
		{name: "same host", host: "board.local", origin: "http://board.local", want: true},
		{name: "same host and port", host: "127.0.0.1:3333", origin: "http://127.0.0.1:3333", want: true},
		{name: "case differs", host: "Board.Local", origin: "https://board.local", want: true},
		{name: "host as prefix", host: "board.local", origin: "http://board.local.attacker.example", want: false},
		{name: "host as suffix", host: "board.local", origin: "http://evil-board.local", want: false},
		{name: "other port", host: "127.0.0.1:3333", origin: "http://127.0.0.1:4444", want: false},
		{name: "garbage", host: "board.local", origin: "::not a url", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := sameOrigin(r); got != tt.want {
				t.Fatalf("sameOrigin(host=%q, origin=%q) = %v, want %v", tt.host, tt.origin, got, tt.want)
			}
		})
	}
}

func TestWS_RejectsCrossOrigin(t *testing.T) {
	srv, st := newTestServer(t, false)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	host := strings.TrimPrefix(ts.URL, "http://")
	hdr := http.Header{}
	hdr.Set("Origin", "http://"+host+".attacker.example")
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+host+"/ws", hdr)
	if err == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"SET_TASK_NAME","id":"t1","name":"pwned"}`))
		conn.Close()
		t.Fatalf("cross-origin upgrade accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got resp=%v err=%v", resp, err)
	}
	if got, _ := st.State().FindTask("t1"); got.Name != "Buy milk" {
		t.Fatalf("t1 changed: %+v", got)
	}
}
