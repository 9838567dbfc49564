package cli

import (
	"taskboard/internal/format"
	"taskboard/internal/selector"

	"github.com/spf13/cobra"
)

type groupOut struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Tasks int    `json:"tasks"`
	Open  int    `json:"open"`
}

func newGroupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Inspect task groups",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List groups in dashboard order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []groupOut
			err := withSession(cmd, app, func(s *session) error {
				t := s.store.State()
				for _, g := range selector.Dashboard(t).Groups {
					l := selector.TaskList(t, g.ID)
					o := groupOut{ID: g.ID, Name: l.Name, Tasks: len(l.Tasks)}
					for _, task := range l.Tasks {
						if !task.IsComplete {
							o.Open++
						}
					}
					out = append(out, o)
				}
				return nil
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": format.NewList(out)})
		},
	}

	cmd.AddCommand(listCmd)
	return cmd
}
