package web

import (
	"sync"

	"taskboard/internal/store"
)

// changeHub fans store changes out to live connections. Each subscriber has a small buffer;
// a full buffer drops the change rather than blocking Dispatch.
type changeHub struct {
	mu     sync.Mutex
	subs   map[chan store.Change]struct{}
	done   chan struct{}
	closed bool
}

func newChangeHub() *changeHub {
	return &changeHub{subs: map[chan store.Change]struct{}{}, done: make(chan struct{})}
}

func (h *changeHub) subscribe() (ch chan store.Change, cancel func()) {
	ch = make(chan store.Change, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

func (h *changeHub) broadcast(c store.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// listen is the store listener feeding the hub.
func (h *changeHub) listen(c store.Change) {
	if c.Changed {
		h.broadcast(c)
	}
}

func (h *changeHub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// close ends every live stream.
func (h *changeHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.done)
	}
}
