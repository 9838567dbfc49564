package cli

import (
	"errors"
	"strings"

	"taskboard/internal/format"
	"taskboard/internal/model"
	"taskboard/internal/query"
	"taskboard/internal/selector"
	"taskboard/internal/store"

	"github.com/spf13/cobra"
)

type taskOut struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Group      string          `json:"group"`
	GroupName  string          `json:"groupName,omitempty"`
	GroupKnown bool            `json:"groupKnown"`
	IsComplete bool            `json:"isComplete"`
	Comments   []model.Comment `json:"comments,omitempty"`
}

type changeOut struct {
	Changed bool    `json:"changed"`
	Version uint64  `json:"version"`
	Task    taskOut `json:"task"`
}

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, inspect and edit tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksRenameCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var group string
	var where string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in state order",
		Example: strings.TrimSpace(`
  taskboard tasks list --group g1
  taskboard tasks list --where '!isComplete && name contains "milk"'
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := query.Compile(where)
			if err != nil {
				return writeErr(cmd, err)
			}
			var out []taskOut
			err = withSession(cmd, app, func(s *session) error {
				t := s.store.State()
				tasks, err := query.Tasks(t, f)
				if err != nil {
					return err
				}
				group = strings.TrimSpace(group)
				for _, task := range tasks {
					if group != "" && task.Group != group {
						continue
					}
					env := query.EnvFor(t, task)
					out = append(out, taskOut{
						ID:         task.ID,
						Name:       task.Name,
						Group:      task.Group,
						GroupName:  env.GroupName,
						GroupKnown: env.GroupKnown,
						IsComplete: task.IsComplete,
					})
				}
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": format.NewList(out)})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Only tasks in this group id")
	cmd.Flags().StringVar(&where, "where", "", "Filter expression over id, name, group, groupName, groupKnown, isComplete, comments")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out taskOut
			err := withSession(cmd, app, func(s *session) error {
				p, err := selector.TaskDetail(s.store.State(), selector.RouteParams{ID: args[0]})
				if err != nil {
					return err
				}
				out = detailOut(p)
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newTasksRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <task-id> <name>",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if name == "" {
				return writeErr(cmd, errors.New("name is required"))
			}
			return runTaskIntent(cmd, app, args[0], func(h selector.TaskDetailHandlers) store.Change {
				return h.SetTaskName(name)
			})
		},
	}
}

func newTasksMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <group-id>",
		Short: "Move a task to another group",
		Long:  "Move a task to another group. The group id is not checked; a task pointing at a missing group is shown as \"(unknown group)\".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := strings.TrimSpace(args[1])
			if group == "" {
				return writeErr(cmd, errors.New("group is required"))
			}
			return runTaskIntent(cmd, app, args[0], func(h selector.TaskDetailHandlers) store.Change {
				return h.SetTaskGroup(group)
			})
		},
	}
}

func newTasksCompleteCmd(app *App) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task complete (or open again with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskIntent(cmd, app, args[0], func(h selector.TaskDetailHandlers) store.Change {
				return h.SetTaskCompletion(!undo)
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the task open")
	return cmd
}

// runTaskIntent dispatches one intent for an existing task and prints the result.
func runTaskIntent(cmd *cobra.Command, app *App, id string, intent func(selector.TaskDetailHandlers) store.Change) error {
	var out changeOut
	err := withSession(cmd, app, func(s *session) error {
		if _, err := selector.TaskDetail(s.store.State(), selector.RouteParams{ID: id}); err != nil {
			return err
		}
		c := intent(selector.BindTaskDetail(s.store, selector.TaskContext{TaskID: id}))
		p, err := selector.TaskDetail(c.Next, selector.RouteParams{ID: id})
		if err != nil {
			return err
		}
		out = changeOut{Changed: c.Changed, Version: c.Version, Task: detailOut(p)}
		out.Task.Comments = nil
		return nil
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": out})
}

func detailOut(p selector.TaskDetailProps) taskOut {
	out := taskOut{
		ID:         p.ID,
		Name:       p.Task.Name,
		Group:      p.Task.Group,
		GroupKnown: p.GroupKnown,
		IsComplete: p.IsComplete,
		Comments:   p.Comments,
	}
	for _, g := range p.Groups {
		if g.ID == p.Task.Group {
			out.GroupName = g.Name
			break
		}
	}
	return out
}
