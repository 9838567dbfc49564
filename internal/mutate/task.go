package mutate

import (
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/state"
)

// Result is the outcome of a mutation. When Changed is false, Tree is the input tree
// itself (same backing slices).
type Result struct {
	Tree         state.Tree
	Changed      bool
	EventPayload map[string]any
}

func unchanged(t state.Tree) Result {
	return Result{Tree: t}
}

// replaceTask returns a copy of t whose tasks slice is freshly allocated and holds next at
// index i. Groups and comments are shared with t.
func replaceTask(t state.Tree, i int, next model.Task) state.Tree {
	tasks := make([]model.Task, len(t.Tasks))
	copy(tasks, t.Tasks)
	tasks[i] = next
	t.Tasks = tasks
	return t
}

// SetTaskName renames the task with id. Unknown ids and identical names leave the tree unchanged.
func SetTaskName(t state.Tree, id, name string) Result {
	i := t.TaskIndex(id)
	if i < 0 {
		return unchanged(t)
	}
	prev := t.Tasks[i]
	if prev.Name == name {
		return unchanged(t)
	}
	next := prev
	next.Name = name
	return Result{
		Tree:    replaceTask(t, i, next),
		Changed: true,
		EventPayload: map[string]any{
			"from": prev.Name,
			"to":   name,
		},
	}
}

// SetTaskGroup reassigns the task with id to groupID.
// groupID is not checked against the groups collection; the group picker is populated from
// the same tree, and views render an unmatched group without failing.
func SetTaskGroup(t state.Tree, id, groupID string) Result {
	groupID = strings.TrimSpace(groupID)
	i := t.TaskIndex(id)
	if i < 0 {
		return unchanged(t)
	}
	prev := t.Tasks[i]
	if prev.Group == groupID {
		return unchanged(t)
	}
	next := prev
	next.Group = groupID
	return Result{
		Tree:    replaceTask(t, i, next),
		Changed: true,
		EventPayload: map[string]any{
			"from": prev.Group,
			"to":   groupID,
		},
	}
}

// SetTaskCompletion sets IsComplete to the given value (it does not toggle).
func SetTaskCompletion(t state.Tree, id string, isComplete bool) Result {
	i := t.TaskIndex(id)
	if i < 0 {
		return unchanged(t)
	}
	prev := t.Tasks[i]
	if prev.IsComplete == isComplete {
		return unchanged(t)
	}
	next := prev
	next.IsComplete = isComplete
	return Result{
		Tree:         replaceTask(t, i, next),
		Changed:      true,
		EventPayload: map[string]any{"isComplete": isComplete},
	}
}
