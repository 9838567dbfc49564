package cli

import (
	"errors"
	"strings"

	"taskboard/internal/format"
	"taskboard/internal/model"
	"taskboard/internal/selector"

	"github.com/spf13/cobra"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and add task comments",
	}

	listCmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List comments on a task (oldest-first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []model.Comment
			err := withSession(cmd, app, func(s *session) error {
				p, err := selector.TaskDetail(s.store.State(), selector.RouteParams{ID: args[0]})
				if err != nil {
					return err
				}
				out = p.Comments
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": format.NewList(out)})
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <task-id> <text>",
		Short: "Add a Markdown comment to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return writeErr(cmd, errors.New("comment text is required"))
			}
			var out model.Comment
			err := withSession(cmd, app, func(s *session) error {
				if _, err := selector.TaskDetail(s.store.State(), selector.RouteParams{ID: args[0]}); err != nil {
					return err
				}
				h := selector.BindTaskDetail(s.store, selector.TaskContext{TaskID: args[0]})
				c := h.AddComment(text)
				comments := c.Next.CommentsForTask(h.TaskID())
				if !c.Changed || len(comments) == 0 {
					return errors.New("comment was not added")
				}
				out = comments[len(comments)-1]
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(addCmd)
	return cmd
}
