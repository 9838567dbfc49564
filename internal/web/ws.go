package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"taskboard/internal/action"
	"taskboard/internal/store"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header (non-browser clients) and browser
// requests whose Origin host equals the requested host.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, strings.TrimSpace(r.Host))
}

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsMaxMessage = 64 * 1024
)

// wsMessage is both directions of the /ws protocol. The server sends "hello" on connect,
// "change" per store change and "ack" or "error" after each client action.
type wsMessage struct {
	Type    string          `json:"type"`
	Version uint64          `json:"version"`
	Changed bool            `json:"changed,omitempty"`
	Action  json.RawMessage `json:"action,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func changeMessage(c store.Change) wsMessage {
	msg := wsMessage{Type: "change", Version: c.Version, Changed: c.Changed}
	if c.Action != nil {
		if b, err := action.Encode(c.Action); err == nil {
			msg.Action = b
		}
	}
	return msg
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch, unsubscribe := s.hub.subscribe()
	defer unsubscribe()

	replies := make(chan wsMessage, 8)
	go func() {
		defer cancel()
		s.readActions(ctx, conn, replies)
	}()

	write := func(msg wsMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(msg) == nil
	}

	if !write(wsMessage{Type: "hello", Version: s.store.Version()}) {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.hub.done:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(wsWriteWait))
			return
		case c := <-ch:
			if !write(changeMessage(c)) {
				return
			}
		case msg := <-replies:
			if !write(msg) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readActions decodes client messages as actions and dispatches them. Only the writer loop
// writes to conn.
func (s *Server) readActions(ctx context.Context, conn *websocket.Conn, replies chan<- wsMessage) {
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var reply wsMessage
		switch a, err := action.Decode(b); {
		case err != nil:
			reply = wsMessage{Type: "error", Version: s.store.Version(), Error: err.Error()}
		case s.cfg.ReadOnly:
			reply = wsMessage{Type: "error", Version: s.store.Version(), Error: "read-only"}
		default:
			c := s.store.Dispatch(a)
			reply = wsMessage{Type: "ack", Version: c.Version, Changed: c.Changed}
		}
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}
