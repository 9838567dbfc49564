package selector

import (
	"strings"

	"taskboard/internal/action"
	"taskboard/internal/store"
)

// TaskContext is the per-view context the TaskDetail handlers are bound to.
type TaskContext struct {
	TaskID string
}

// TaskDetailHandlers are the intents a TaskDetail view can emit. Each one dispatches the
// matching action for the bound task.
type TaskDetailHandlers struct {
	ctx TaskContext
	d   store.Dispatcher
}

func BindTaskDetail(d store.Dispatcher, ctx TaskContext) TaskDetailHandlers {
	ctx.TaskID = strings.TrimSpace(ctx.TaskID)
	return TaskDetailHandlers{ctx: ctx, d: d}
}

func (h TaskDetailHandlers) TaskID() string { return h.ctx.TaskID }

func (h TaskDetailHandlers) SetTaskCompletion(isComplete bool) store.Change {
	return h.d.Dispatch(action.SetTaskCompletion(h.ctx.TaskID, isComplete))
}

func (h TaskDetailHandlers) SetTaskGroup(groupID string) store.Change {
	return h.d.Dispatch(action.SetTaskGroup(h.ctx.TaskID, groupID))
}

func (h TaskDetailHandlers) SetTaskName(name string) store.Change {
	return h.d.Dispatch(action.SetTaskName(h.ctx.TaskID, name))
}

func (h TaskDetailHandlers) AddComment(contents string) store.Change {
	return h.d.Dispatch(action.AddComment(h.ctx.TaskID, contents))
}
