// Package selector derives view props from the state tree.
//
// Every function here is pure: the same tree and route parameters always yield equal props.
package selector

import (
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/state"
)

var ErrNotFound = errors.New("not found")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RouteParams are the parameters captured by the router for a view.
type RouteParams struct {
	ID string
}

type DashboardProps struct {
	Groups []model.Group
}

// Dashboard passes the groups collection through unchanged.
func Dashboard(t state.Tree) DashboardProps {
	return DashboardProps{Groups: t.Groups}
}

type TaskListProps struct {
	ID    string
	Name  string
	Tasks []model.Task
}

// TaskList selects the tasks of one group, in state order.
func TaskList(t state.Tree, groupID string) TaskListProps {
	p := TaskListProps{ID: groupID, Tasks: t.TasksInGroup(groupID)}
	if g, ok := t.FindGroup(groupID); ok {
		p.Name = g.Name
	}
	return p
}

type TaskDetailProps struct {
	ID         string
	Task       model.Task
	Groups     []model.Group
	IsComplete bool
	Comments   []model.Comment

	// GroupKnown is false when Task.Group does not match any group.
	GroupKnown bool
}

// Validate checks that the props describe a real task.
func (p TaskDetailProps) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("task detail: missing id")
	}
	if p.Task.ID != p.ID {
		return fmt.Errorf("task detail: task %q does not match route id %q", p.Task.ID, p.ID)
	}
	return nil
}

// TaskDetail selects the props of the task named by params.ID. It returns a NotFoundError
// (matching ErrNotFound) when no task has that id.
func TaskDetail(t state.Tree, params RouteParams) (TaskDetailProps, error) {
	id := strings.TrimSpace(params.ID)
	task, ok := t.FindTask(id)
	if !ok {
		return TaskDetailProps{ID: id, Groups: t.Groups}, NotFoundError{Kind: "task", ID: id}
	}
	_, known := t.FindGroup(task.Group)
	p := TaskDetailProps{
		ID:         id,
		Task:       task,
		Groups:     t.Groups,
		IsComplete: task.IsComplete,
		Comments:   t.CommentsForTask(id),
		GroupKnown: known,
	}
	return p, p.Validate()
}

type NavigationProps struct {
	Title         string
	DashboardPath string
	TaskCount     int
	OpenCount     int
}

const AppTitle = "My Application"

func Navigation(t state.Tree, dashboardPath string) NavigationProps {
	return NavigationProps{
		Title:         AppTitle,
		DashboardPath: dashboardPath,
		TaskCount:     len(t.Tasks),
		OpenCount:     t.OpenTaskCount(),
	}
}
