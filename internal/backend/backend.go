// Package backend persists the task state outside the process.
//
// The store never calls a backend directly. A Syncer subscribes to the store and applies each
// changed action to the backend on its own goroutine.
package backend

import (
	"context"

	"taskboard/internal/action"
	"taskboard/internal/model"
	"taskboard/internal/state"
)

type Backend interface {
	// Load returns the persisted tree. An empty backend returns state.Empty().
	Load(ctx context.Context) (state.Tree, error)
	// Apply persists the effect of a, given the tree the store produced for it.
	Apply(ctx context.Context, a action.Action, next state.Tree) error
	// Replace overwrites the persisted tree.
	Replace(ctx context.Context, t state.Tree) error
	// Events returns the most recent limit events, oldest first. limit <= 0 means all.
	Events(ctx context.Context, limit int) ([]model.Event, error)
	Close() error
}
