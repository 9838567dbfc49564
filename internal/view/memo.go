package view

import (
	"html/template"
	"reflect"
	"sync"
)

type memoEntry struct {
	props any
	out   template.HTML
}

// Memo skips re-rendering a view whose props are structurally equal to the last props it
// rendered under the same key.
type Memo struct {
	mu      sync.Mutex
	entries map[string]memoEntry
}

func NewMemo() *Memo {
	return &Memo{entries: map[string]memoEntry{}}
}

// Render returns the cached output when props equal the previous props for key. fresh reports
// whether render was called.
func (m *Memo) Render(key string, props any, render func() (template.HTML, error)) (out template.HTML, fresh bool, err error) {
	m.mu.Lock()
	prev, ok := m.entries[key]
	m.mu.Unlock()
	if ok && reflect.DeepEqual(prev.props, props) {
		return prev.out, false, nil
	}

	out, err = render()
	if err != nil {
		return "", true, err
	}
	m.mu.Lock()
	m.entries[key] = memoEntry{props: props, out: out}
	m.mu.Unlock()
	return out, true, nil
}

func (m *Memo) Forget(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
