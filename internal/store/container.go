// Package store holds the process-wide state container.
//
// A Store owns the authoritative state.Tree. The only way to change it is Dispatch, which
// runs the root reducer and notifies subscribers synchronously. The store itself performs
// no I/O; persistence and live views are subscribers.
package store

import (
	"sync"

	"taskboard/internal/action"
	"taskboard/internal/state"
)

// Reducer computes the next tree. The boolean reports whether it differs from the input.
type Reducer func(state.Tree, action.Action) (state.Tree, bool)

// Change describes one processed dispatch.
type Change struct {
	Action  action.Action
	Prev    state.Tree
	Next    state.Tree
	Version uint64
	Changed bool
}

type Listener func(Change)

// Dispatcher is the write side of the store, as seen by views and handlers.
type Dispatcher interface {
	Dispatch(a action.Action) Change
}

type listenerEntry struct {
	id uint64
	fn Listener
}

type Store struct {
	// dispatchMu serializes Dispatch so actions are reduced and announced in issue order.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	tree      state.Tree
	version   uint64
	reduce    Reducer
	nextSubID uint64
	listeners []listenerEntry
}

func New(initial state.Tree, reduce Reducer) *Store {
	return &Store{
		tree:   initial.Normalize(),
		reduce: reduce,
	}
}

// State returns the current tree. The returned value must be treated as read-only.
func (s *Store) State() state.Tree {
	s.mu.RLock()
	t := s.tree
	s.mu.RUnlock()
	return t
}

// Version increases by one for every dispatch that changed the tree.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	v := s.version
	s.mu.RUnlock()
	return v
}

// Snapshot returns the tree and its version as one consistent pair.
func (s *Store) Snapshot() (state.Tree, uint64) {
	s.mu.RLock()
	t, v := s.tree, s.version
	s.mu.RUnlock()
	return t, v
}

// Dispatch reduces a against the current tree, installs the result and notifies every
// subscriber before returning. Listeners run on the dispatching goroutine and must not call
// Dispatch themselves; hand the work to another goroutine instead.
func (s *Store) Dispatch(a action.Action) Change {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.tree
	next, changed := prev, false
	if a != nil && s.reduce != nil {
		next, changed = s.reduce(prev, a)
	}
	if changed {
		s.tree = next
		s.version++
	}
	ch := Change{
		Action:  a,
		Prev:    prev,
		Next:    s.tree,
		Version: s.version,
		Changed: changed,
	}
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(ch)
	}
	return ch
}

// Subscribe registers l and returns a function that removes it. Calling the returned
// function more than once is harmless.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.listeners {
				if e.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Replace swaps in a whole tree (for example after reloading from the backend) and
// notifies subscribers with a nil action.
func (s *Store) Replace(t state.Tree) Change {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.tree
	s.tree = t.Normalize()
	s.version++
	ch := Change{Prev: prev, Next: s.tree, Version: s.version, Changed: true}
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(ch)
	}
	return ch
}
